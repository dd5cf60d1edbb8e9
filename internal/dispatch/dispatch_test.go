package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
	apperrors "github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/errors"
)

func TestNewSlackClient_EmptyURL(t *testing.T) {
	assert.Nil(t, NewSlackClient("", time.Second))
}

func TestSlackClient_PostsTextPayload(t *testing.T) {
	var got slackPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res, err := NewSlackClient(srv.URL, time.Second).Send(context.Background(), "hola")
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, res.Body)
	assert.Equal(t, "hola", got.Text)
}

func TestSlackClient_Non2xxCapturesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	res, err := NewSlackClient(srv.URL, time.Second).Send(context.Background(), "hola")
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Len(t, res.Body, errBodyReadLimit)
}

func TestSlackClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewSlackClient(url, time.Second).Send(context.Background(), "hola")
	require.Error(t, err)
}

func TestDispatcher_Send(t *testing.T) {
	logger := zerolog.Nop()

	var status atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	d := NewDispatcher(NewSlackClient(srv.URL, time.Second), nil, &logger)

	t.Run("slack ok", func(t *testing.T) {
		status.Store(http.StatusOK)
		require.NoError(t, d.Send(context.Background(), domain.Notification{Channel: domain.ChannelSlack, Text: "hi"}))
	})

	t.Run("slack rejected", func(t *testing.T) {
		status.Store(http.StatusForbidden)
		err := d.Send(context.Background(), domain.Notification{Channel: domain.ChannelSlack, Text: "hi"})
		require.ErrorIs(t, err, apperrors.ErrDispatchFailed)
	})

	t.Run("email without backend", func(t *testing.T) {
		err := d.Send(context.Background(), domain.Notification{Channel: domain.ChannelEmail, To: "a@b.c"})
		require.ErrorIs(t, err, apperrors.ErrNotImplemented)
	})

	t.Run("unknown channel", func(t *testing.T) {
		err := d.Send(context.Background(), domain.Notification{Channel: "sms"})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("slack not configured", func(t *testing.T) {
		err := NewDispatcher(nil, nil, &logger).Send(context.Background(), domain.Notification{Channel: domain.ChannelSlack})
		require.ErrorIs(t, err, apperrors.ErrNotConfigured)
	})
}

func TestNewEmailClient(t *testing.T) {
	assert.Nil(t, NewEmailClient("", "alertas@thinkpaladar.com", ""))
	assert.Nil(t, NewEmailClient("re_key", "", ""))

	c := NewEmailClient("re_key", "alertas@thinkpaladar.com", "")
	require.NotNil(t, c)
	assert.Equal(t, defaultFromName, c.fromName)
}
