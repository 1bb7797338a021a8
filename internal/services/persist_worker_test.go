package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vatgate/vatgate-api/internal/client/shopadmin"
	"github.com/vatgate/vatgate-api/internal/mocks"
	"github.com/vatgate/vatgate-api/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// capturingDLQ records published bodies and signals each publish.
type capturingDLQ struct {
	mu        sync.Mutex
	bodies    []string
	published chan struct{}
}

func newCapturingDLQ() *capturingDLQ {
	return &capturingDLQ{published: make(chan struct{}, 10)}
}

func (d *capturingDLQ) Publish(_ context.Context, body string) error {
	d.mu.Lock()
	d.bodies = append(d.bodies, body)
	d.mu.Unlock()
	d.published <- struct{}{}
	return nil
}

func (d *capturingDLQ) all() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.bodies...)
}

func testTask() services.PersistTask {
	vat := "DE123456789"
	return services.PersistTask{
		ID:               uuid.New(),
		StorefrontDomain: "acme.myshopify.com",
		CustomerID:       "gid://shopify/Customer/7",
		TaxExempt:        true,
		VATNumber:        &vat,
		EnqueuedAt:       time.Now().Unix(),
	}
}

func TestPersistWorker_ProcessesTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	admin := mocks.NewMockAdminClientInterface(ctrl)
	done := make(chan struct{})

	task := testTask()
	admin.EXPECT().
		UpdateCustomerTaxProfile(gomock.Any(), task.StorefrontDomain, task.CustomerID, true, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ bool, _ shopadmin.UpdateOptions) error {
			close(done)
			return nil
		})

	worker := services.NewPersistWorker(admin, nil, 1, 10)
	worker.Start()
	defer worker.Stop()

	worker.Enqueue(task)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed in time")
	}
}

func TestPersistWorker_FailedWriteGoesToDLQ(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	admin := mocks.NewMockAdminClientInterface(ctrl)
	admin.EXPECT().
		UpdateCustomerTaxProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("admin API unreachable"))

	dlq := newCapturingDLQ()
	worker := services.NewPersistWorker(admin, dlq, 1, 10)
	worker.Start()
	defer worker.Stop()

	task := testTask()
	worker.Enqueue(task)

	select {
	case <-dlq.published:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not dead-lettered in time")
	}

	bodies := dlq.all()
	require.Len(t, bodies, 1)

	var decoded services.PersistTask
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &decoded))
	assert.Equal(t, task.ID, decoded.ID)
	assert.Equal(t, task.CustomerID, decoded.CustomerID)
	require.NotNil(t, decoded.VATNumber)
	assert.Equal(t, "DE123456789", *decoded.VATNumber)
}

func TestPersistWorker_FullQueueDeadLettersWithoutBlocking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	admin := mocks.NewMockAdminClientInterface(ctrl)
	dlq := newCapturingDLQ()

	// Workers never started: the single buffer slot fills immediately.
	worker := services.NewPersistWorker(admin, dlq, 1, 1)

	worker.Enqueue(testTask())
	worker.Enqueue(testTask())

	select {
	case <-dlq.published:
	case <-time.After(2 * time.Second):
		t.Fatal("overflow task was not dead-lettered in time")
	}
	assert.Len(t, dlq.all(), 1)
}
