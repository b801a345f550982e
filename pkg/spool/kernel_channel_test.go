//go:build linux

package spool

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/go-spooler/pkg/mq/posixmq"
)

func TestKernelChannel_DefaultName(t *testing.T) {
	a := newKernelChannel(t, KernelOptions{Capacity: 1})
	b := newKernelChannel(t, KernelOptions{Capacity: 1})

	assert.True(t, strings.HasPrefix(a.Name(), "/spooler-"), a.Name())
	assert.NotEqual(t, a.Name(), b.Name())
	assert.Equal(t, DefaultMaxMessageSize, a.MaxMessageSize())
}

func TestKernelChannel_Attr(t *testing.T) {
	ch := newKernelChannel(t, KernelOptions{Capacity: 3, MaxMessageSize: 256})

	attr, err := ch.Attr()
	require.NoError(t, err)
	assert.Equal(t, 3, attr.MaxMsg)
	assert.Equal(t, 256, attr.MsgSize)
	assert.Equal(t, 0, attr.CurMsgs)
	assert.Equal(t, 3, ch.Cap())

	require.NoError(t, ch.Put(context.Background(), printJob(1, "A")))
	attr, err = ch.Attr()
	require.NoError(t, err)
	assert.Equal(t, 1, attr.CurMsgs)
}

func TestKernelChannel_FrameTooLarge(t *testing.T) {
	ch := newKernelChannel(t, KernelOptions{Capacity: 2, MaxMessageSize: 64})

	err := ch.Put(context.Background(), printJob(1, strings.Repeat("x", 64)))
	require.ErrorIs(t, err, ErrFrameTooLarge)

	attr, err := ch.Attr()
	require.NoError(t, err)
	assert.Equal(t, 0, attr.CurMsgs, "oversized request reached the queue")
}

func TestKernelChannel_ForeignFrameIsMalformed(t *testing.T) {
	ch := newKernelChannel(t, KernelOptions{Capacity: 2, MaxMessageSize: 128})

	writer, err := posixmq.Open(ch.Name(), posixmq.WriteOnly, 0, nil)
	require.NoError(t, err)
	defer writer.Close()

	tests := []string{
		"140245 FILE_140245_1 200", // bare "origin label size" frame
		"1 4:ABCD 100 0000000000000000",
		"",
	}
	for _, frame := range tests {
		require.NoError(t, writer.Send([]byte(frame), 0, time.Time{}))

		_, err := ch.Take(context.Background())
		assert.ErrorIs(t, err, ErrMalformedFrame, "frame %q", frame)
	}
}

func TestKernelChannel_CloseUnlinks(t *testing.T) {
	ch := newKernelChannel(t, KernelOptions{Capacity: 1})
	name := ch.Name()

	require.NoError(t, ch.Close())

	_, err := posixmq.Open(name, posixmq.ReadOnly, 0, nil)
	assert.Error(t, err, "queue %s still exists after Close", name)

	_, err = ch.Take(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestKernelChannel_NamedQueueExists(t *testing.T) {
	ch := newKernelChannel(t, KernelOptions{Capacity: 1})

	_, err := NewKernelChannel(KernelOptions{Name: ch.Name(), Capacity: 1})
	require.ErrorIs(t, err, ErrResource)
	assert.ErrorIs(t, err, posixmq.ErrExist)
}

func TestKernelChannel_CloseNoticedByPollingWaiter(t *testing.T) {
	ch := newKernelChannel(t, KernelOptions{Capacity: 1, PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := ch.Take(ctx)
		errCh <- err
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, ch.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not notice Close")
	}
}
