package hwdevice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingDeviceContext struct {
	fakeDeviceContext
	Err error
}

func (c *failingDeviceContext) Close(ctx context.Context) error {
	c.fakeDeviceContext.Close(ctx)
	return c.Err
}

func TestDeviceRef(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	devCtx := &fakeDeviceContext{}
	ref := NewDeviceRef(devCtx)
	require.EqualValues(t, 1, ref.RefCount())

	clone := ref.Clone()
	require.NotNil(t, clone)
	require.EqualValues(t, 2, ref.RefCount())
	require.Same(t, devCtx, clone.Context())

	require.NoError(t, ref.Release(ctx))
	require.True(t, ref.IsReleased())
	require.Nil(t, ref.Context())
	require.Nil(t, ref.Clone())
	require.False(t, devCtx.IsClosed())

	require.NoError(t, ref.Release(ctx))
	require.EqualValues(t, 1, clone.RefCount())

	require.NoError(t, clone.Release(ctx))
	require.Equal(t, 1, devCtx.CloseCount)
	require.NoError(t, clone.Release(ctx))
	require.Equal(t, 1, devCtx.CloseCount)
}

func TestDeviceRefNil(t *testing.T) {
	t.Parallel()
	var ref *DeviceRef
	require.Nil(t, ref.Clone())
	require.Nil(t, ref.Context())
	require.Zero(t, ref.RefCount())
	require.True(t, ref.IsReleased())
	require.NoError(t, ref.Release(context.Background()))
}

func TestDeviceRefParent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	parentCtx := &fakeDeviceContext{}
	parent := NewDeviceRef(parentCtx)
	childCtx := &failingDeviceContext{Err: errors.New("busy")}
	child := newDeviceRef(childCtx, parent.Clone())

	require.NoError(t, parent.Release(ctx))
	require.False(t, parentCtx.IsClosed())

	err := child.Release(ctx)
	require.ErrorIs(t, err, childCtx.Err)
	require.True(t, childCtx.IsClosed())
	require.True(t, parentCtx.IsClosed(), "the parent must be released even if closing the child failed")
}
