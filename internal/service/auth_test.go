package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/workspaces/common/id"
	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
	"basegraph.app/workspaces/internal/store"
)

var _ = Describe("AuthService", func() {
	var (
		svc      service.AuthService
		auth     *mockAuthenticator
		users    *mockUserStore
		sessions *mockSessionStore
		tx       *mockTxRunner
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		auth = &mockAuthenticator{}
		users = &mockUserStore{}
		sessions = &mockSessionStore{}
		tx = &mockTxRunner{stores: &mockStoreProvider{users: users, sessions: sessions}}

		svc = service.NewAuthService(auth, tx, users, sessions)
	})

	Describe("GetAuthorizationURL", func() {
		It("delegates to the identity provider", func() {
			url, err := svc.GetAuthorizationURL("state123")

			Expect(err).NotTo(HaveOccurred())
			Expect(url).To(ContainSubstring("state=state123"))
		})
	})

	Describe("HandleCallback", func() {
		BeforeEach(func() {
			auth.exchangeFn = func(_ context.Context, code string) (*identity.AuthResult, error) {
				Expect(code).To(Equal("code123"))
				return &identity.AuthResult{
					Profile: identity.Profile{
						ID:        "user_01ABC",
						Email:     "ada@example.com",
						FirstName: "Ada",
						LastName:  "Lovelace",
					},
					Tokens: identity.Tokens{
						AccessToken:    "access",
						RefreshToken:   "refresh",
						OrganizationID: strPtr("org_1"),
						SessionID:      strPtr("session_1"),
					},
				}, nil
			}
		})

		It("upserts the user and creates a session in one transaction", func() {
			var upserted *model.User
			users.upsertFn = func(_ context.Context, u *model.User) error {
				upserted = u
				u.ID = 99
				return nil
			}
			var created *model.Session
			sessions.createFn = func(_ context.Context, s *model.Session) error {
				created = s
				return nil
			}

			result, err := svc.HandleCallback(ctx, "code123")

			Expect(err).NotTo(HaveOccurred())
			Expect(tx.calls).To(Equal(1))

			Expect(upserted.WorkOSID).To(Equal("user_01ABC"))
			Expect(upserted.Name).To(Equal("Ada Lovelace"))
			Expect(upserted.AvatarURL).To(BeNil())

			Expect(created.UserID).To(Equal(int64(99)))
			Expect(created.ID).NotTo(BeZero())
			Expect(created.AccessToken).To(Equal("access"))
			Expect(created.RefreshToken).To(Equal("refresh"))
			Expect(*created.OrganizationID).To(Equal("org_1"))
			Expect(*created.WorkOSSessionID).To(Equal("session_1"))
			Expect(created.ExpiresAt).To(BeTemporally("~", time.Now().Add(service.SessionTTL), time.Minute))

			Expect(result.User).To(BeIdenticalTo(upserted))
			Expect(result.Session).To(BeIdenticalTo(created))
		})

		It("returns ErrInvalidCode when the exchange is rejected", func() {
			auth.exchangeFn = func(context.Context, string) (*identity.AuthResult, error) {
				return nil, identity.ErrInvalidCode
			}

			_, err := svc.HandleCallback(ctx, "bad")

			Expect(err).To(MatchError(service.ErrInvalidCode))
			Expect(tx.calls).To(BeZero())
		})

		It("does not create a session when the upsert fails", func() {
			users.upsertFn = func(context.Context, *model.User) error {
				return errors.New("unique violation")
			}
			createCalled := false
			sessions.createFn = func(context.Context, *model.Session) error {
				createCalled = true
				return nil
			}

			_, err := svc.HandleCallback(ctx, "code123")

			Expect(err).To(HaveOccurred())
			Expect(createCalled).To(BeFalse())
		})
	})

	Describe("ValidateSession", func() {
		It("returns the user and session", func() {
			session := &model.Session{ID: 1, UserID: 2}
			user := &model.User{ID: 2}
			sessions.getValidFn = func(context.Context, int64) (*model.Session, error) { return session, nil }
			users.getByIDFn = func(_ context.Context, id int64) (*model.User, error) {
				Expect(id).To(Equal(int64(2)))
				return user, nil
			}

			gotUser, gotSession, err := svc.ValidateSession(ctx, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(gotUser).To(BeIdenticalTo(user))
			Expect(gotSession).To(BeIdenticalTo(session))
		})

		It("maps a missing session to ErrSessionExpired", func() {
			_, _, err := svc.ValidateSession(ctx, 1)

			Expect(err).To(MatchError(service.ErrSessionExpired))
		})

		It("maps a missing user to ErrUserNotFound", func() {
			sessions.getValidFn = func(context.Context, int64) (*model.Session, error) {
				return &model.Session{ID: 1, UserID: 2}, nil
			}
			users.getByIDFn = func(context.Context, int64) (*model.User, error) { return nil, store.ErrNotFound }

			_, _, err := svc.ValidateSession(ctx, 1)

			Expect(err).To(MatchError(service.ErrUserNotFound))
		})
	})

	Describe("Logout", func() {
		It("deletes the session", func() {
			Expect(svc.Logout(ctx, 5)).To(Succeed())
			Expect(sessions.deleteCalls).To(Equal([]int64{5}))
		})
	})
})
