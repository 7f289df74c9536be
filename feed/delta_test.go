package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "full record", payload: `{"table_id":"t1","table":{"id":"t1","label":"101","status":"seated","seated_duration":"45m0s","alerts":[],"overlay_markers":[]}}`},
		{name: "id taken from envelope", payload: `{"table_id":"t1","table":{"label":"101","status":"free"}}`},
		{name: "id mismatch", payload: `{"table_id":"t1","table":{"id":"t2","status":"free"}}`, wantErr: true},
		{name: "bad status", payload: `{"table_id":"t1","table":{"id":"t1","status":"occupied"}}`, wantErr: true},
		{name: "bad alert", payload: `{"table_id":"t1","table":{"id":"t1","status":"seated","alerts":[{"type":"fire","severity":"high"}]}}`, wantErr: true},
		{name: "bad duration", payload: `{"table_id":"t1","table":{"id":"t1","status":"seated","seated_duration":"soon"}}`, wantErr: true},
		{name: "not json", payload: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Equal(t, "t1", d.Table.ID)
				assert.NotNil(t, d.Table.Alerts)
			}
		})
	}
}

func TestApplyUpsertsWholeRecord(t *testing.T) {
	utils.SilenceLoggers()
	s := store.NewTableStore()
	s.Upsert(models.Table{ID: "a3", Status: models.TableSeated, IsVIP: true})

	ok := Apply("test", []byte(`{"table_id":"a3","table":{"id":"a3","status":"seated","seated_duration":"1h15m0s","alerts":[{"type":"slow_pacing","severity":"high","message":"Pacing alert!","action_required":true,"visible_to":["server"]}],"overlay_markers":["timer"]}}`), s)
	require.True(t, ok)

	got, _ := s.Get("a3")
	assert.False(t, got.IsVIP, "feed delta replaces the whole record")
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, models.AlertSlowPacing, got.Alerts[0].Kind)
	require.NotNil(t, got.SeatedDuration)
	assert.Equal(t, 75*time.Minute, time.Duration(*got.SeatedDuration))

	assert.False(t, Apply("test", []byte(`garbage`), s))
}

func TestNormalizeDropsTimesThatDoNotMatchStatus(t *testing.T) {
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	d90 := models.Duration(90 * time.Minute)

	tests := []struct {
		status          models.TableStatus
		wantReservation bool
		wantSeated      bool
	}{
		{models.TableReserved, true, false},
		{models.TableSeated, false, true},
		{models.TableFree, false, false},
		{models.TableDirty, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			d, err := Delta{TableID: "t9", Table: models.Table{
				Status: tt.status, ReservationTime: &at, SeatedDuration: &d90,
			}}.Normalize()
			require.NoError(t, err)
			assert.Equal(t, tt.wantReservation, d.Table.ReservationTime != nil)
			assert.Equal(t, tt.wantSeated, d.Table.SeatedDuration != nil)
		})
	}
}

func TestApplyReservedDeltaKeepsNoSeatedDuration(t *testing.T) {
	utils.SilenceLoggers()
	s := store.NewTableStore()

	ok := Apply("test", []byte(`{"table_id":"t9","table":{"status":"reserved","reservation_time":"2026-05-01T20:00:00Z","seated_duration":"1h30m0s"}}`), s)
	require.True(t, ok)

	got, _ := s.Get("t9")
	assert.Nil(t, got.SeatedDuration)
	require.NotNil(t, got.ReservationTime)
}

type fakeSource struct {
	payloads [][]byte
	wg       *sync.WaitGroup
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Run(ctx context.Context, sink Sink) error {
	defer f.wg.Done()
	for _, p := range f.payloads {
		Apply(f.Name(), p, sink)
	}
	return nil
}

func TestRunAll(t *testing.T) {
	utils.SilenceLoggers()
	s := store.NewTableStore()

	var wg sync.WaitGroup
	wg.Add(2)
	RunAll(context.Background(), s,
		fakeSource{payloads: [][]byte{[]byte(`{"table_id":"t1","table":{"status":"free"}}`)}, wg: &wg},
		fakeSource{payloads: [][]byte{[]byte(`{"table_id":"t2","table":{"status":"dirty"}}`)}, wg: &wg},
	)
	wg.Wait()

	assert.Equal(t, 2, s.Len())
}

func TestNewRedisSourceRejectsBadURL(t *testing.T) {
	_, err := NewRedisSource("not a url", "floor:tables")
	assert.Error(t, err)

	src, err := NewRedisSource("redis://localhost:6379/0", "floor:tables")
	require.NoError(t, err)
	assert.Equal(t, "redis:floor:tables", src.Name())
}
