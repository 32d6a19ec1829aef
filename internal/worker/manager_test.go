package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWorker struct {
	name     string
	startErr error
	events   *[]string
}

func (w *recordingWorker) Start(context.Context) error {
	if w.startErr != nil {
		return w.startErr
	}
	*w.events = append(*w.events, "start "+w.name)
	return nil
}

func (w *recordingWorker) Stop()        { *w.events = append(*w.events, "stop "+w.name) }
func (w *recordingWorker) Name() string { return w.name }

func TestManager_StartStopOrder(t *testing.T) {
	var events []string
	m := NewManager(zap.NewNop())
	m.Register(&recordingWorker{name: "a", events: &events})
	m.Register(&recordingWorker{name: "b", events: &events})

	require.NoError(t, m.StartAll(context.Background()))
	m.StopAll()
	m.StopAll()

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)
}

func TestManager_StartFailureStopsStartedWorkers(t *testing.T) {
	var events []string
	boom := errors.New("boom")

	m := NewManager(nil)
	m.Register(&recordingWorker{name: "a", events: &events})
	m.Register(&recordingWorker{name: "b", startErr: boom, events: &events})
	m.Register(&recordingWorker{name: "c", events: &events})

	err := m.StartAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start a", "stop a"}, events)
}
