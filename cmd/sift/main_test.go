package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/sift/internal/app"
	"go.trai.ch/sift/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newMockedApp(ctrl *gomock.Controller) (*app.App, *mocks.MockConfigLoader, *mocks.MockLogger) {
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	application := app.New(
		mockLoader,
		mocks.NewMockCacheStore(ctrl),
		mocks.NewMockFingerprinter(ctrl),
		mocks.NewMockScanner(ctrl),
		mocks.NewMockClassifier(ctrl),
		mocks.NewMockAnalyzer(ctrl),
		mocks.NewMockTaxonomyBuilder(ctrl),
		mocks.NewMockMover(ctrl),
		mockLogger,
	)
	return application, mockLoader, mockLogger
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	application, _, mockLogger := newMockedApp(ctrl)

	provider := func(_ context.Context) (*app.Components, error) {
		return &app.Components{App: application, Logger: mockLogger}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, error) {
		return nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	application, mockLoader, mockLogger := newMockedApp(ctrl)
	mockLoader.EXPECT().Load(".").Return(nil, errors.New("load failed"))
	mockLogger.EXPECT().Error(gomock.Any())

	provider := func(_ context.Context) (*app.Components, error) {
		return &app.Components{App: application, Logger: mockLogger}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"run", t.TempDir()}, stderr, provider)

	assert.Equal(t, 1, exitCode)
}
