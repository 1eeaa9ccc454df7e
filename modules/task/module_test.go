package task

import (
	"context"
	"testing"
	"time"

	"github.com/example/kanban-task-service/config"
	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientModule depends on the task module and talks to it only through the
// request-reply adapter, the same way the api module does.
type clientModule struct {
	port TaskPort
}

var _ mono.DependentModule = (*clientModule)(nil)

func (m *clientModule) Name() string { return "client" }
func (m *clientModule) Dependencies() []string { return []string{"task"} }
func (m *clientModule) Start(_ context.Context) error { return nil }
func (m *clientModule) Stop(_ context.Context) error { return nil }

func (m *clientModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.port = NewTaskAdapter(container)
	}
}

func setupTestApp(t *testing.T) (TaskPort, *recordingPublisher) {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(5*time.Second),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:     config.DriverSQLite,
		DBPath:       ":memory:",
		StoreTimeout: time.Second,
	}
	pub := &recordingPublisher{}
	client := &clientModule{}

	app.Register(NewModule(cfg, pub, app.Logger()))
	app.Register(client)

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(ctx)
	})

	require.NotNil(t, client.port, "task dependency not injected")
	return client.port, pub
}

func TestTaskModule_RequestReplyRoundTrip(t *testing.T) {
	port, pub := setupTestApp(t)
	ctx := context.Background()

	created, err := port.CreateTask(ctx, domain.Input{
		Title:       domain.Set("A"),
		Description: domain.Set("B"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToDo, created.Status)
	assert.Zero(t, created.Version)

	patched, err := port.PartialUpdateTask(ctx, created.ID, domain.Input{Title: domain.Set("C")})
	require.NoError(t, err)
	assert.Equal(t, "C", patched.Title)
	assert.Equal(t, "B", patched.Description)
	assert.Equal(t, int64(1), patched.Version)

	cleared, err := port.PartialUpdateTask(ctx, created.ID, domain.Input{Description: domain.Set("")})
	require.NoError(t, err)
	assert.Equal(t, "C", cleared.Title)
	assert.Equal(t, "", cleared.Description)
	assert.Equal(t, int64(2), cleared.Version)

	page, err := port.ListTasks(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	assert.Len(t, pub.Events(), 3)
}

func TestTaskModule_FaultsKeepErrorKind(t *testing.T) {
	port, pub := setupTestApp(t)
	ctx := context.Background()

	_, err := port.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = port.DeleteTask(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = port.CreateTask(ctx, domain.Input{Title: domain.Set("   ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = port.ListTasks(ctx, ListQuery{Status: "LATER"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	created, err := port.CreateTask(ctx, domain.Input{Title: domain.Set("A")})
	require.NoError(t, err)
	require.NoError(t, port.DeleteTask(ctx, created.ID))

	_, err = port.PartialUpdateTask(ctx, created.ID, domain.Input{Title: domain.Set("B")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, pub.Events(), 2)
}
