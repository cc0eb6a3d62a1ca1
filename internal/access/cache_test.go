package access_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("CachedEntitlementStore", func() {
	var (
		ctx     context.Context
		mr      *miniredis.Miniredis
		rdb     *redis.Client
		backing *mockEntitlements
		store   *access.CachedEntitlementStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		backing = &mockEntitlements{enabled: map[string]bool{"school-a/student_management": true}}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		store = access.NewCachedEntitlementStore(backing, rdb, time.Minute, nil, lg)
	})

	AfterEach(func() {
		_ = rdb.Close()
		mr.Close()
	})

	It("reads through once and then serves from redis", func() {
		for i := 0; i < 3; i++ {
			enabled, err := store.IsEnabled(ctx, "school-a", access.ModuleStudentManagement)
			Expect(err).NotTo(HaveOccurred())
			Expect(enabled).To(BeTrue())
		}
		Expect(backing.calls).To(Equal(1))
		Expect(mr.TTL("eduadmin:entitlement:school-a:student_management")).To(Equal(time.Minute))
	})

	It("caches negative answers too", func() {
		for i := 0; i < 2; i++ {
			enabled, err := store.IsEnabled(ctx, "school-a", access.ModuleEventManagement)
			Expect(err).NotTo(HaveOccurred())
			Expect(enabled).To(BeFalse())
		}
		Expect(backing.calls).To(Equal(1))
	})

	It("sees a toggle after a refresh", func() {
		_, _ = store.IsEnabled(ctx, "school-a", access.ModuleStudentManagement)
		backing.enabled["school-a/student_management"] = false

		enabled, _ := store.IsEnabled(ctx, "school-a", access.ModuleStudentManagement)
		Expect(enabled).To(BeTrue())

		Expect(store.Refresh(ctx, "school-a", access.ModuleStudentManagement, false)).To(Succeed())
		enabled, _ = store.IsEnabled(ctx, "school-a", access.ModuleStudentManagement)
		Expect(enabled).To(BeFalse())
		Expect(backing.calls).To(Equal(1))
	})

	It("keeps a refreshed flag when a slower read of the old flag finishes later", func() {
		gated := &gatedEntitlements{loaded: make(chan struct{}), release: make(chan struct{})}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		racy := access.NewCachedEntitlementStore(gated, rdb, time.Minute, nil, lg)

		done := make(chan bool)
		go func() {
			defer GinkgoRecover()
			enabled, err := racy.IsEnabled(ctx, "school-a", access.ModuleEventManagement)
			Expect(err).NotTo(HaveOccurred())
			done <- enabled
		}()

		<-gated.loaded
		Expect(racy.Refresh(ctx, "school-a", access.ModuleEventManagement, true)).To(Succeed())
		close(gated.release)
		Expect(<-done).To(BeFalse())

		Expect(mr.Get("eduadmin:entitlement:school-a:event_management")).To(Equal("1"))
		enabled, err := racy.IsEnabled(ctx, "school-a", access.ModuleEventManagement)
		Expect(err).NotTo(HaveOccurred())
		Expect(enabled).To(BeTrue())
	})

	It("falls back to the backing store when redis is down", func() {
		mr.Close()
		enabled, err := store.IsEnabled(ctx, "school-a", access.ModuleStudentManagement)
		Expect(err).NotTo(HaveOccurred())
		Expect(enabled).To(BeTrue())
	})

	It("propagates backing store failures", func() {
		backing.shouldFail = true
		_, err := store.IsEnabled(ctx, "school-a", access.ModuleStudentManagement)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("CachedPermissionStore", func() {
	It("memoises lookups", func() {
		ctx := context.Background()
		backing := &mockPermissions{}
		store := access.NewCachedPermissionStore(backing, 16, time.Minute, nil)

		for i := 0; i < 3; i++ {
			ok, err := store.Allows(ctx, identity.RoleTeacher, access.ModuleStudentManagement, access.PermissionRead)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		}
		Expect(backing.calls).To(Equal(1))

		_, _ = store.Allows(ctx, identity.RoleTeacher, access.ModuleStudentManagement, access.PermissionUpdate)
		Expect(backing.calls).To(Equal(2))
	})

	It("does not cache failures", func() {
		ctx := context.Background()
		backing := &mockPermissions{shouldFail: true}
		store := access.NewCachedPermissionStore(backing, 16, time.Minute, nil)

		_, err := store.Allows(ctx, identity.RoleTeacher, access.ModuleStudentManagement, access.PermissionRead)
		Expect(err).To(HaveOccurred())

		backing.shouldFail = false
		ok, err := store.Allows(ctx, identity.RoleTeacher, access.ModuleStudentManagement, access.PermissionRead)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(backing.calls).To(Equal(2))
	})
})

// gatedEntitlements answers from the state it saw on entry, after the test
// lets it go.
type gatedEntitlements struct {
	loaded  chan struct{}
	release chan struct{}
}

func (g *gatedEntitlements) IsEnabled(ctx context.Context, schoolID string, module access.Module) (bool, error) {
	close(g.loaded)
	<-g.release
	return false, nil
}
