package sync_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"commentflow.app/engine/core/config"
	"commentflow.app/engine/internal/sync"
)

var _ = Describe("Scheduler", func() {
	It("runs repeated cycles and stops when the context is cancelled", func() {
		accounts := &mockAccountStore{}
		engine := sync.NewEngine(&mockSource{}, &mockDrafter{}, newMemoryCommentStore(), accounts, &mockSessionStore{}, nil, config.SyncConfig{
			ThreadPageSize:  50,
			UploadsPageSize: 50,
		})
		scheduler := sync.NewScheduler(engine, 5*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			scheduler.Run(ctx)
		}()

		Eventually(func() int32 {
			return atomic.LoadInt32(&accounts.listCalls)
		}).Should(BeNumerically(">=", 2))

		cancel()
		Eventually(done).Should(BeClosed())
	})
})
