package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/user"
	"github.com/frahmantamala/hr-portal/internal/user/filestore"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

// recordingPublisher captures events synchronously for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// failingStore breaks every lookup while delegating nothing else
type failingStore struct {
	user.Store
}

func (failingStore) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, errors.New("open users.json: permission denied")
}

func (failingStore) CreateUser(ctx context.Context, draft user.Draft) (*user.User, error) {
	return nil, errors.New("open users.json: permission denied")
}

var quietLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx       context.Context
		store     *filestore.Store
		hasher    *auth.Hasher
		codec     *auth.SessionCodec
		publisher *recordingPublisher
		service   *auth.Service
	)

	seedUser := func(email, password, role string, active bool) *user.User {
		hash, err := hasher.Hash(password)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		u, err := store.CreateUser(ctx, user.Draft{
			Email:        email,
			PasswordHash: hash,
			FirstName:    "Test",
			LastName:     "User",
			Role:         role,
			Department:   "Operations",
			IsActive:     active,
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return u
	}

	countUsers := func() int {
		users, err := store.ListUsers(ctx)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return len(users)
	}

	ginkgo.BeforeEach(func() {
		var err error
		ctx = context.Background()
		store, err = filestore.New(ginkgo.GinkgoT().TempDir())
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		hasher = auth.NewHasher(4)
		codec, err = auth.NewSessionCodec(testSecret)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		publisher = &recordingPublisher{}
		service = auth.NewService(store, hasher, codec, nil, publisher, auth.DefaultSessionTTL, quietLogger)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("issues a token for the user's identity and records the login", func() {
				// Given
				seeded := seedUser("hr@x.com", "Password1", user.RoleHR, true)

				// When
				res := service.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"})

				// Then
				gomega.Expect(res.Success).To(gomega.BeTrue())
				gomega.Expect(res.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(res.Message).To(gomega.Equal("Login successful"))
				gomega.Expect(res.Token).ToNot(gomega.BeEmpty())

				claims, err := codec.Verify(res.Token)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.User.ID).To(gomega.Equal(seeded.ID))
				gomega.Expect(claims.User.Role).To(gomega.Equal(user.RoleHR))
				gomega.Expect(res.Data).To(gomega.Equal(claims.User))

				reloaded, err := store.FindUserByID(ctx, seeded.ID)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(reloaded.LastLogin).ToNot(gomega.BeNil())

				gomega.Expect(publisher.types()).To(gomega.ContainElement(events.EventTypeLoginSucceeded))
			})
		})

		ginkgo.Context("when credentials are wrong", func() {
			ginkgo.It("answers unknown emails and wrong passwords identically", func() {
				seedUser("hr@x.com", "Password1", user.RoleHR, true)

				unknown := service.Login(ctx, auth.LoginDTO{Email: "nobody@x.com", Password: "Password1"})
				wrong := service.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password2"})

				gomega.Expect(unknown.Success).To(gomega.BeFalse())
				gomega.Expect(unknown.Error).To(gomega.Equal("Invalid email or password"))
				gomega.Expect(wrong).To(gomega.Equal(unknown))
				gomega.Expect(wrong.Code).To(gomega.Equal(http.StatusBadRequest))
				gomega.Expect(wrong.Token).To(gomega.BeEmpty())
			})

			ginkgo.It("reports disabled accounts", func() {
				seedUser("gone@x.com", "Password1", user.RoleEmployee, false)

				res := service.Login(ctx, auth.LoginDTO{Email: "gone@x.com", Password: "Password1"})

				gomega.Expect(res.Success).To(gomega.BeFalse())
				gomega.Expect(res.Error).To(gomega.Equal("Account disabled. Contact your administrator."))
				gomega.Expect(res.Token).To(gomega.BeEmpty())
			})

			ginkgo.It("aggregates validation failures", func() {
				res := service.Login(ctx, auth.LoginDTO{Email: "not-an-email", Password: ""})

				gomega.Expect(res.Code).To(gomega.Equal(http.StatusBadRequest))
				gomega.Expect(res.Error).To(gomega.Equal("Invalid email, Password is required"))
			})
		})

		ginkgo.Context("when the store fails", func() {
			ginkgo.It("reports a generic internal error", func() {
				broken := auth.NewService(failingStore{}, hasher, codec, nil, nil, 0, quietLogger)

				res := broken.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"})

				gomega.Expect(res.Success).To(gomega.BeFalse())
				gomega.Expect(res.Code).To(gomega.Equal(http.StatusInternalServerError))
				gomega.Expect(res.Error).To(gomega.Equal("Internal server error"))
				gomega.Expect(res.Error).ToNot(gomega.ContainSubstring("users.json"))
			})
		})
	})

	ginkgo.Describe("Register", func() {
		valid := auth.RegisterDTO{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Email:      "a@x.com",
			Password:   "Password1",
			Department: "Engineering",
		}

		ginkgo.It("creates an active employee and issues a session", func() {
			res := service.Register(ctx, valid)

			gomega.Expect(res.Success).To(gomega.BeTrue())
			gomega.Expect(res.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(res.Message).To(gomega.Equal("Account created successfully"))

			created, err := store.FindUserByEmail(ctx, "a@x.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created.Role).To(gomega.Equal(user.RoleEmployee))
			gomega.Expect(created.IsActive).To(gomega.BeTrue())
			gomega.Expect(hasher.Verify("Password1", created.PasswordHash)).To(gomega.BeTrue())

			claims, err := codec.Verify(res.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.User.ID).To(gomega.Equal(created.ID))
			gomega.Expect(publisher.types()).To(gomega.ContainElement(events.EventTypeUserRegistered))
		})

		ginkgo.It("rejects a weak password without touching the store", func() {
			weak := valid
			weak.Password = "password1"
			before := countUsers()

			res := service.Register(ctx, weak)

			gomega.Expect(res.Success).To(gomega.BeFalse())
			gomega.Expect(res.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(res.Error).To(gomega.Equal(
				"Password must contain at least one lowercase letter, one uppercase letter and one digit"))
			gomega.Expect(countUsers()).To(gomega.Equal(before))
		})

		ginkgo.It("rejects passwords bcrypt cannot hash as a validation error", func() {
			long := valid
			long.Password = "Aa1" + strings.Repeat("x", 77)
			before := countUsers()

			res := service.Register(ctx, long)

			gomega.Expect(res.Success).To(gomega.BeFalse())
			gomega.Expect(res.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(res.Error).To(gomega.Equal("Password must be at most 72 bytes"))
			gomega.Expect(countUsers()).To(gomega.Equal(before))
		})

		ginkgo.It("registers a password of exactly 72 bytes", func() {
			longest := valid
			longest.Password = "Aa1" + strings.Repeat("x", 69)

			res := service.Register(ctx, longest)

			gomega.Expect(res.Success).To(gomega.BeTrue())
			created, err := store.FindUserByEmail(ctx, valid.Email)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(hasher.Verify(longest.Password, created.PasswordHash)).To(gomega.BeTrue())
		})

		ginkgo.It("lists every invalid field at once", func() {
			res := service.Register(ctx, auth.RegisterDTO{FirstName: "A", Email: "x", Password: "short"})

			gomega.Expect(res.Error).To(gomega.Equal(
				"First name must be at least 2 characters, Last name must be at least 2 characters, " +
					"Invalid email, Password must be at least 8 characters, Department is required"))
		})

		ginkgo.It("rejects a duplicate email", func() {
			gomega.Expect(service.Register(ctx, valid).Success).To(gomega.BeTrue())

			res := service.Register(ctx, valid)

			gomega.Expect(res.Success).To(gomega.BeFalse())
			gomega.Expect(res.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(res.Error).To(gomega.Equal("A user with this email already exists"))
			gomega.Expect(countUsers()).To(gomega.Equal(1))
		})

		ginkgo.It("hides store failures", func() {
			broken := auth.NewService(failingStore{}, hasher, codec, nil, nil, 0, quietLogger)

			res := broken.Register(ctx, valid)

			gomega.Expect(res.Code).To(gomega.Equal(http.StatusInternalServerError))
			gomega.Expect(res.Error).To(gomega.Equal("Internal server error"))
		})
	})

	ginkgo.Describe("Logout and Session", func() {
		ginkgo.It("always succeeds, even twice or without a token", func() {
			seedUser("hr@x.com", "Password1", user.RoleHR, true)
			token := service.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"}).Token

			first := service.Logout(ctx, token)
			second := service.Logout(ctx, token)
			anonymous := service.Logout(ctx, "")

			for _, res := range []auth.Result{first, second, anonymous} {
				gomega.Expect(res.Success).To(gomega.BeTrue())
				gomega.Expect(res.Code).To(gomega.Equal(http.StatusOK))
				gomega.Expect(res.Message).To(gomega.Equal("Logged out successfully"))
			}
		})

		ginkgo.It("keeps tokens valid after logout when no denylist is configured", func() {
			seedUser("hr@x.com", "Password1", user.RoleHR, true)
			token := service.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"}).Token
			service.Logout(ctx, token)

			gomega.Expect(service.Session(ctx, token).Success).To(gomega.BeTrue())
		})

		ginkgo.It("resolves a session or reports why not", func() {
			seedUser("hr@x.com", "Password1", user.RoleHR, true)
			token := service.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"}).Token

			ok := service.Session(ctx, token)
			gomega.Expect(ok.Success).To(gomega.BeTrue())
			gomega.Expect(ok.Data.(auth.SessionUser).Email).To(gomega.Equal("hr@x.com"))

			missing := service.Session(ctx, "")
			gomega.Expect(missing.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(missing.Error).To(gomega.Equal("Not authenticated"))

			garbage := service.Session(ctx, "garbage")
			gomega.Expect(garbage.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(garbage.Error).To(gomega.Equal("Session expired"))
		})

		ginkgo.Context("with a redis denylist", func() {
			var (
				mr      *miniredis.Miniredis
				revoked *auth.Service
			)

			ginkgo.BeforeEach(func() {
				var err error
				mr, err = miniredis.Run()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				ginkgo.DeferCleanup(mr.Close)

				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				ginkgo.DeferCleanup(client.Close)

				revoked = auth.NewService(store, hasher, codec, auth.NewRedisDenylist(client), nil, time.Hour, quietLogger)
				seedUser("hr@x.com", "Password1", user.RoleHR, true)
			})

			ginkgo.It("treats a logged out token as expired", func() {
				token := revoked.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"}).Token
				gomega.Expect(revoked.Session(ctx, token).Success).To(gomega.BeTrue())

				gomega.Expect(revoked.Logout(ctx, token).Success).To(gomega.BeTrue())

				res := revoked.Session(ctx, token)
				gomega.Expect(res.Success).To(gomega.BeFalse())
				gomega.Expect(res.Error).To(gomega.Equal("Session expired"))
			})

			ginkgo.It("expires the denylist entry with the token", func() {
				token := revoked.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"}).Token
				revoked.Logout(ctx, token)

				keys := mr.Keys()
				gomega.Expect(keys).To(gomega.HaveLen(1))
				gomega.Expect(mr.TTL(keys[0])).To(gomega.BeNumerically("~", time.Hour, 5*time.Second))
			})

			ginkgo.It("fails closed when redis is unavailable", func() {
				token := revoked.Login(ctx, auth.LoginDTO{Email: "hr@x.com", Password: "Password1"}).Token
				mr.Close()

				res := revoked.Session(ctx, token)
				gomega.Expect(res.Success).To(gomega.BeFalse())
				gomega.Expect(res.Code).To(gomega.Equal(http.StatusUnauthorized))
			})
		})
	})
})
