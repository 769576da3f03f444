package user

import (
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/liuqy/experiment-management/internal"
	"github.com/liuqy/experiment-management/internal/auth"
	userDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/user"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type noopRecorder struct{}

func (noopRecorder) Record(activityType, description string, userID *int64) {}

type mockUserRepository struct {
	users  map[int64]*UserResponse
	grants map[int64][]userDatamodel.PermissionGrant
}

func newMockUserRepository() *mockUserRepository {
	now := time.Now()
	return &mockUserRepository{
		users: map[int64]*UserResponse{
			1: {ID: 1, Username: "admin", Role: "Admin", CreatedAt: now},
			2: {ID: 2, Username: "lab_tech", Role: "User", CreatedAt: now},
		},
		grants: map[int64][]userDatamodel.PermissionGrant{},
	}
}

func (m *mockUserRepository) List(limit, offset int) ([]UserResponse, error) {
	var rows []UserResponse
	for _, u := range m.users {
		rows = append(rows, *u)
	}
	return rows, nil
}

func (m *mockUserRepository) GetByID(id int64) (*UserResponse, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	copied := *u
	copied.Grants = nil
	for _, g := range m.grants[id] {
		copied.Grants = append(copied.Grants, auth.Grant{
			Module:    auth.Module(g.Module),
			CanRead:   g.CanRead,
			CanWrite:  g.CanWrite,
			CanDelete: g.CanDelete,
		})
	}
	return &copied, nil
}

func (m *mockUserRepository) ReplaceGrants(userID int64, grants []userDatamodel.PermissionGrant) error {
	m.grants[userID] = grants
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	if _, ok := m.users[id]; !ok {
		return internal.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.grants, id)
	return nil
}

func (m *mockUserRepository) CountAdmins() (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == userDatamodel.RoleAdmin {
			count++
		}
	}
	return count, nil
}

var _ = ginkgo.Describe("User Service", func() {
	var (
		service *Service
		repo    *mockUserRepository
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		service = NewService(repo, noopRecorder{}, slog.Default())
	})

	ginkgo.Describe("AssignPermissions", func() {
		ginkgo.It("replaces the whole grant set", func() {
			dto := PermissionsDTO{Grants: []GrantDTO{
				{Module: "batch", CanRead: true},
				{Module: "sensor", CanRead: true, CanWrite: true},
			}}

			resp, err := service.AssignPermissions(2, dto, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Grants).To(gomega.HaveLen(2))

			resp, err = service.AssignPermissions(2, PermissionsDTO{Grants: []GrantDTO{{Module: "person", CanRead: true}}}, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Grants).To(gomega.HaveLen(1))
			gomega.Expect(resp.Grants[0].Module).To(gomega.Equal(auth.ModulePerson))
		})

		ginkgo.It("accepts an empty set as a full revoke", func() {
			_, err := service.AssignPermissions(2, PermissionsDTO{Grants: []GrantDTO{{Module: "batch", CanRead: true}}}, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			resp, err := service.AssignPermissions(2, PermissionsDTO{}, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Grants).To(gomega.BeEmpty())
		})

		ginkgo.It("rejects an unknown module", func() {
			_, err := service.AssignPermissions(2, PermissionsDTO{Grants: []GrantDTO{{Module: "payroll"}}}, 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeValidationFailed))
		})

		ginkgo.It("rejects duplicate modules in one payload", func() {
			dto := PermissionsDTO{Grants: []GrantDTO{
				{Module: "batch", CanRead: true},
				{Module: "batch", CanWrite: true},
			}}
			_, err := service.AssignPermissions(2, dto, 1)
			gomega.Expect(err).NotTo(gomega.BeNil())
		})

		ginkgo.It("fails for an unknown user", func() {
			_, err := service.AssignPermissions(42, PermissionsDTO{}, 1)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("deletes another user", func() {
			gomega.Expect(service.Delete(2, 1)).To(gomega.Succeed())
			gomega.Expect(repo.users).NotTo(gomega.HaveKey(int64(2)))
		})

		ginkgo.It("refuses self-deletion", func() {
			err := service.Delete(1, 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidOperation))
		})

		ginkgo.It("refuses to remove the last admin", func() {
			err := service.Delete(1, 2)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidOperation))
		})

		ginkgo.It("allows removing an admin while another remains", func() {
			repo.users[3] = &UserResponse{ID: 3, Username: "root2", Role: "Admin"}
			gomega.Expect(service.Delete(3, 1)).To(gomega.Succeed())
		})
	})
})
