package auth

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/liuqy/experiment-management/internal"
	userDatamodel "github.com/liuqy/experiment-management/internal/core/datamodel/user"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	users         map[string]*userDatamodel.User
	grants        map[int64][]userDatamodel.PermissionGrant
	nextID        int64
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		users: map[string]*userDatamodel.User{
			"liu": {ID: 1, Username: "liu", PasswordHash: string(hash), Role: "User"},
			"qy":  {ID: 2, Username: "qy", PasswordHash: string(hash), Role: "Admin"},
		},
		grants: map[int64][]userDatamodel.PermissionGrant{
			1: {
				{UserID: 1, Module: "batch", CanRead: true},
				{UserID: 1, Module: "sensor", CanRead: true, CanWrite: true},
			},
		},
		nextID: 3,
	}
}

func (m *mockUserRepository) GetByUsername(username string) (*userDatamodel.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.users[username], nil
}

func (m *mockUserRepository) CreateUser(user *userDatamodel.User) error {
	if m.returnError {
		return m.errorToReturn
	}
	if _, exists := m.users[user.Username]; exists {
		return errors.New("unique constraint violation")
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepository) GetGrants(userID int64) ([]userDatamodel.PermissionGrant, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.grants[userID], nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
	)

	secret := "0123456789abcdef0123456789abcdef"

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(secret, 30*time.Minute)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, 8, slog.Default())
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("issues a bearer token for valid credentials", func() {
			result, err := service.Authenticate(LoginDTO{Username: "liu", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(result.TokenType).To(gomega.Equal("bearer"))
			gomega.Expect(result.UserInfo.Username).To(gomega.Equal("liu"))
		})

		ginkgo.It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "liu", Password: "wrong"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown username with the same error", func() {
			_, err := service.Authenticate(LoginDTO{Username: "nobody", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("creates a non-privileged user and logs in", func() {
			result, err := service.Register(RegisterDTO{Username: "newbie", Password: "long-enough-pass"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.UserInfo.Role).To(gomega.Equal("User"))
			gomega.Expect(result.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(mockRepo.users).To(gomega.HaveKey("newbie"))
		})

		ginkgo.It("rejects a password below the minimum length", func() {
			_, err := service.Register(RegisterDTO{Username: "newbie", Password: "short"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeWeakPassword))
		})

		ginkgo.It("rejects a taken username", func() {
			_, err := service.Register(RegisterDTO{Username: "liu", Password: "long-enough-pass"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrUsernameTaken))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("accepts a token well inside its lifetime", func() {
			gen := NewJWTTokenGenerator(secret, 29*time.Minute)
			token, _, err := gen.GenerateAccessToken("liu", "User")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Subject).To(gomega.Equal("liu"))
			gomega.Expect(claims.Role).To(gomega.Equal("User"))
		})

		ginkgo.It("reports an expired token distinctly from a malformed one", func() {
			gen := NewJWTTokenGenerator(secret, -time.Minute)
			token, _, err := gen.GenerateAccessToken("liu", "User")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTokenExpired))
		})

		ginkgo.It("rejects garbage tokens", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidToken))
		})

		ginkgo.It("rejects a token signed with a different secret", func() {
			gen := NewJWTTokenGenerator("another-secret-another-secret-xx", 30*time.Minute)
			token, _, err := gen.GenerateAccessToken("liu", "User")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ResolveUser", func() {
		ginkgo.It("builds the grant map from stored rows", func() {
			user, err := service.ResolveUser("liu")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Grants).To(gomega.HaveLen(2))
			gomega.Expect(user.Can(ModuleBatch, ActionRead)).To(gomega.BeTrue())
			gomega.Expect(user.Can(ModuleBatch, ActionWrite)).To(gomega.BeFalse())
			gomega.Expect(user.Can(ModuleSensor, ActionWrite)).To(gomega.BeTrue())
		})

		ginkgo.It("denies everything for a module with no grant row", func() {
			user, err := service.ResolveUser("liu")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Can(ModulePerson, ActionRead)).To(gomega.BeFalse())
			gomega.Expect(user.Can(ModulePerson, ActionWrite)).To(gomega.BeFalse())
			gomega.Expect(user.Can(ModulePerson, ActionDelete)).To(gomega.BeFalse())
		})

		ginkgo.It("short-circuits every check for admins", func() {
			user, err := service.ResolveUser("qy")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Grants).To(gomega.BeEmpty())
			for _, module := range Modules {
				gomega.Expect(user.Can(module, ActionDelete)).To(gomega.BeTrue())
			}
		})

		ginkgo.It("fails when the subject no longer exists", func() {
			_, err := service.ResolveUser("ghost")
			gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
		})
	})
})
