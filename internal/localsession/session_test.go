package localsession

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/forgegrid/internal/nodeid"
	"github.com/specialistvlad/forgegrid/internal/session"
)

func TestFactory_HoldsDataRootUntilClose(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	mgr := session.NewManager()
	f := &Factory{Manager: mgr, IDs: nodeid.NewSequence("run")}

	s, err := f.NewSession(ctx, root)
	require.NoError(t, err)
	require.NotNil(t, s.Runner())

	_, err = f.NewSession(ctx, root)
	assert.ErrorIs(t, err, session.ErrRunInProgress)

	require.NoError(t, s.Close(ctx))
	assert.False(t, mgr.Active(root))

	s2, err := f.NewSession(ctx, root)
	require.NoError(t, err)
	require.NoError(t, s2.Close(ctx))
}

func TestFactory_SeparateFactoriesShareTheDataRootLock(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	first := &Factory{Manager: session.NewManager()}
	second := &Factory{Manager: session.NewManager()}

	s, err := first.NewSession(ctx, root)
	require.NoError(t, err)

	_, err = second.NewSession(ctx, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrRunInProgress)

	require.NoError(t, s.Close(ctx))

	s2, err := second.NewSession(ctx, root)
	require.NoError(t, err)
	require.NoError(t, s2.Close(ctx))
}
