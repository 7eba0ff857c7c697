package department_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/transport"
	userPostgres "github.com/frahmantamala/hr-portal/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Department Handler Integration", func() {
	var (
		handler *department.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.Department{})).To(Succeed())

		repo := userPostgres.NewUserRepository(db)
		Expect(repo.SeedDepartments(context.Background(), []userDatamodel.Department{
			{ID: "dept_sales", Name: "Sales"},
			{ID: "dept_eng", Name: "Engineering"},
		})).To(Succeed())

		handler = department.NewHandler(transport.NewBaseHandler(slogger), department.NewService(repo, slogger))
	})

	It("should handle GET /api/departments request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/departments", nil)
		w := httptest.NewRecorder()

		handler.GetDepartments(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response struct {
			Success bool                     `json:"success"`
			Data    []*department.Department `json:"data"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Success).To(BeTrue())
		Expect(response.Data).To(HaveLen(2))
		Expect(response.Data[0].Name).To(Equal("Engineering"))
	})

	It("should answer 500 with the failure envelope when the store fails", func() {
		failing := department.NewHandler(transport.NewBaseHandler(slogger),
			department.NewService(&MockRepository{failError: errors.New("read departments.json")}, slogger))

		w := httptest.NewRecorder()
		failing.GetDepartments(w, httptest.NewRequest(http.MethodGet, "/api/departments", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring(`"success":false`))
		Expect(w.Body.String()).NotTo(ContainSubstring("departments.json"))
	})
})
