package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDriver struct {
	calls int
	err   error
}

func (f *fakeDriver) Reconcile(_ context.Context) error {
	f.calls++
	return f.err
}

func TestReconciler_RunSkipsWhenOffline(t *testing.T) {
	driver := &fakeDriver{}
	r := NewReconciler(driver, &fakeMonitor{online: false}, nil, ReconcilerConfig{})

	assert.NoError(t, r.Run(context.Background()))
	assert.Zero(t, driver.calls)
}

func TestReconciler_RunDrivesCoordinator(t *testing.T) {
	driver := &fakeDriver{}
	r := NewReconciler(driver, &fakeMonitor{online: true}, nil, ReconcilerConfig{})

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1, driver.calls)
}

func TestReconciler_RunPropagatesError(t *testing.T) {
	driver := &fakeDriver{err: errors.New("redis gone")}
	r := NewReconciler(driver, nil, nil, ReconcilerConfig{})

	assert.Error(t, r.Run(context.Background()))
}
