package auth_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type unknownEvent struct{ events.BaseEvent }

var _ = ginkgo.Describe("AuditLogger", func() {
	var (
		buf   *bytes.Buffer
		audit *auth.AuditLogger
	)

	ginkgo.BeforeEach(func() {
		buf = &bytes.Buffer{}
		audit = auth.NewAuditLogger(slog.New(slog.NewJSONHandler(buf, nil)))
	})

	ginkgo.It("records failed logins with their reason", func() {
		err := audit.HandleAuthEvent(context.Background(), events.NewLoginFailedEvent("a@x.com", events.ReasonAccountDisabled))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(buf.String()).To(gomega.ContainSubstring(`"msg":"login failed"`))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring(`"reason":"account_disabled"`))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring(`"level":"WARN"`))
	})

	ginkgo.It("subscribes to every auth event", func() {
		bus := events.NewEventBus(quietLogger)
		audit.RegisterEventHandlers(bus)

		gomega.Expect(bus.PublishSync(context.Background(), events.NewUserRegisteredEvent("usr_1", "a@x.com", "Sales"))).To(gomega.Succeed())
		gomega.Expect(bus.PublishSync(context.Background(), events.NewLogoutEvent("usr_1", "jti-1"))).To(gomega.Succeed())
		gomega.Expect(buf.String()).To(gomega.ContainSubstring(`"msg":"user registered"`))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring(`"token_id":"jti-1"`))
	})

	ginkgo.It("rejects events it does not know", func() {
		err := audit.HandleAuthEvent(context.Background(), &unknownEvent{})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
