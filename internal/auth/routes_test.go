package auth_test

import (
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("RouteTable", func() {
	var table *auth.RouteTable

	ginkgo.BeforeEach(func() {
		var err error
		table, err = auth.NewRouteTable(auth.DefaultRouteRules(), false)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.DescribeTable("classification",
		func(path string, class auth.RouteClass, prefix string) {
			rule := table.Classify(path)
			gomega.Expect(rule.Class).To(gomega.Equal(class))
			gomega.Expect(rule.Prefix).To(gomega.Equal(prefix))
		},
		ginkgo.Entry("root is public", "/", auth.ClassPublic, "/"),
		ginkgo.Entry("login page", "/login", auth.ClassPublic, "/login"),
		ginkgo.Entry("login api", "/api/auth/login", auth.ClassPublic, "/api/auth/login"),
		ginkgo.Entry("departments subpath", "/api/departments/x", auth.ClassPublic, "/api/departments"),
		ginkgo.Entry("logout api", "/api/auth/logout", auth.ClassPublic, "/api/auth/logout"),
		ginkgo.Entry("me", "/api/auth/me", auth.ClassProtectedAPI, "/api/auth/me"),
		ginkgo.Entry("user admin", "/api/users/usr_1", auth.ClassProtectedAPI, "/api/users"),
		ginkgo.Entry("hr page", "/hr/employees", auth.ClassProtectedPage, "/hr"),
		ginkgo.Entry("dashboard", "/dashboard", auth.ClassProtectedPage, "/dashboard"),
		ginkgo.Entry("segment aware", "/hrx", auth.ClassPublic, "/hrx"),
		ginkgo.Entry("login lookalike", "/loginfoo", auth.ClassPublic, "/loginfoo"),
		ginkgo.Entry("unlisted page", "/about", auth.ClassPublic, "/about"),
	)

	ginkgo.It("protects unlisted paths when denying by default", func() {
		strict, err := auth.NewRouteTable(auth.DefaultRouteRules(), true)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(strict.Classify("/api/payroll").Class).To(gomega.Equal(auth.ClassProtectedAPI))
		gomega.Expect(strict.Classify("/reports").Class).To(gomega.Equal(auth.ClassProtectedPage))
		gomega.Expect(strict.Classify("/login").Class).To(gomega.Equal(auth.ClassPublic))
	})

	ginkgo.It("lets the first matching rule win", func() {
		t, err := auth.NewRouteTable([]auth.RouteRule{
			{Prefix: "/api/users/self", Class: auth.ClassPublic},
			{Prefix: "/api/users", Class: auth.ClassProtectedAPI},
		}, false)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(t.Classify("/api/users/self").Class).To(gomega.Equal(auth.ClassPublic))
		gomega.Expect(t.Classify("/api/users/other").Class).To(gomega.Equal(auth.ClassProtectedAPI))
	})

	ginkgo.It("restricts dashboard roles on the exact path only", func() {
		dashboard := table.Classify("/dashboard")
		gomega.Expect(dashboard.Exact).To(gomega.BeTrue())
		gomega.Expect(dashboard.Allows("employee")).To(gomega.BeFalse())
		gomega.Expect(dashboard.Redirect).To(gomega.Equal("/employee/dashboard"))

		nested := table.Classify("/dashboard/settings")
		gomega.Expect(nested.Class).To(gomega.Equal(auth.ClassProtectedPage))
		gomega.Expect(nested.Exact).To(gomega.BeFalse())
		gomega.Expect(nested.Allows("employee")).To(gomega.BeTrue())
	})

	ginkgo.It("lets an exact rule share its prefix with a prefix rule", func() {
		gomega.Expect(auth.ValidateRules([]auth.RouteRule{
			{Prefix: "/reports", Exact: true, Class: auth.ClassProtectedPage, Roles: []string{"hr"}, Redirect: "/"},
			{Prefix: "/reports", Class: auth.ClassProtectedPage},
		})).To(gomega.Succeed())
		gomega.Expect(auth.ValidateRules([]auth.RouteRule{
			{Prefix: "/reports", Exact: true, Class: auth.ClassProtectedPage},
			{Prefix: "/reports", Exact: true, Class: auth.ClassPublic},
		})).To(gomega.MatchError(gomega.ContainSubstring("duplicate prefix")))
	})

	ginkgo.It("checks role allowlists", func() {
		hr := table.Classify("/hr")
		gomega.Expect(hr.Allows("hr")).To(gomega.BeTrue())
		gomega.Expect(hr.Allows("admin")).To(gomega.BeTrue())
		gomega.Expect(hr.Allows("employee")).To(gomega.BeFalse())
		gomega.Expect(table.Classify("/api/auth/me").Allows("employee")).To(gomega.BeTrue())
	})

	ginkgo.Describe("validation", func() {
		ginkgo.It("accepts the default table", func() {
			gomega.Expect(auth.ValidateRules(auth.DefaultRouteRules())).To(gomega.Succeed())
		})

		ginkgo.It("reports every malformed rule", func() {
			err := auth.ValidateRules([]auth.RouteRule{
				{Prefix: "admin", Class: auth.ClassProtectedPage},
				{Prefix: "/x", Class: "secret"},
				{Prefix: "/y", Class: auth.ClassProtectedPage, Roles: []string{"root"}, Redirect: "/"},
				{Prefix: "/z", Class: auth.ClassProtectedPage, Roles: []string{"hr"}},
				{Prefix: "/z", Class: auth.ClassPublic},
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("must start with /"))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring(`unknown class "secret"`))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring(`unknown role "root"`))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("needs a redirect"))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("duplicate prefix"))
		})
	})
})
