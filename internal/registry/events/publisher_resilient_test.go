package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"assetledger/internal/registry/models"
	"assetledger/internal/registry/ports/mocks"
	"assetledger/pkg/platform/circuit"
)

var errBrokerDown = errors.New("broker down")

func newResilient(t *testing.T, threshold int) (*ResilientPublisher, *mocks.MockEventPublisher, *mocks.MockEventPublisher, *circuit.Breaker) {
	t.Helper()
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockEventPublisher(ctrl)
	fallback := mocks.NewMockEventPublisher(ctrl)
	breaker := circuit.New("test-events",
		circuit.WithFailureThreshold(threshold),
		circuit.WithSuccessThreshold(2),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResilientPublisher(primary, fallback, breaker, logger), primary, fallback, breaker
}

func TestResilientPublisher_HealthyPrimaryOnly(t *testing.T) {
	p, primary, _, breaker := newResilient(t, 2)
	event := models.Event{Type: models.EventAssetMinted, AssetID: 1}

	primary.EXPECT().Publish(gomock.Any(), event).Return(nil)

	require.NoError(t, p.Publish(context.Background(), event))
	assert.False(t, breaker.IsOpen())
}

func TestResilientPublisher_FailureBelowThresholdSurfaces(t *testing.T) {
	p, primary, _, breaker := newResilient(t, 2)

	primary.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errBrokerDown)

	err := p.Publish(context.Background(), models.Event{})
	assert.ErrorIs(t, err, errBrokerDown)
	assert.False(t, breaker.IsOpen())
}

func TestResilientPublisher_OpenCircuitRoutesToFallback(t *testing.T) {
	p, primary, fallback, breaker := newResilient(t, 2)
	ctx := context.Background()

	gomock.InOrder(
		primary.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errBrokerDown),
		primary.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errBrokerDown),
		fallback.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil),
	)

	assert.Error(t, p.Publish(ctx, models.Event{}))
	// second failure opens the circuit and is delivered via the fallback
	assert.NoError(t, p.Publish(ctx, models.Event{}))
	assert.True(t, breaker.IsOpen())
}

func TestResilientPublisher_RecoveryClosesCircuit(t *testing.T) {
	p, primary, fallback, breaker := newResilient(t, 1)
	ctx := context.Background()

	primary.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errBrokerDown)
	fallback.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, p.Publish(ctx, models.Event{}))
	require.True(t, breaker.IsOpen())

	// first success while open still copies to the fallback
	primary.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	fallback.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, p.Publish(ctx, models.Event{}))
	assert.True(t, breaker.IsOpen())

	primary.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, p.Publish(ctx, models.Event{}))
	assert.False(t, breaker.IsOpen())
}
