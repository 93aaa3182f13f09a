package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.SetRooms(1, 2)
	m.WSEvent("joinRoom")
	m.Mutation("chatPost", "ok", time.Millisecond)
	m.FanoutDelivered("local", 3)
	m.FanoutDropped(1)
	m.BusFrame("in")
	m.BusError()
	m.HTTPRequest("GET", "/api/projects", "200", time.Millisecond)
	m.StoreProbe(true, time.Millisecond)
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.Mutation("chatPost", "ok", 5*time.Millisecond)
	m.Mutation("chatPost", "ok", 0)
	m.Mutation("transformUpdate", "not_found", time.Millisecond)
	m.FanoutDelivered("local", 4)
	m.FanoutDelivered("bus", 0)
	m.SetRooms(3, 7)
	m.StoreProbe(true, time.Millisecond)
	m.StoreProbe(false, time.Second)

	families := gather(t, reg)

	if got := families["scenesync_connections_active"].GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Errorf("connections_active = %v, want 1", got)
	}
	if got := counterWithLabels(families["scenesync_mutations_total"], "kind", "chatPost", "result", "ok"); got != 2 {
		t.Errorf("mutations{chatPost,ok} = %v, want 2", got)
	}
	if got := len(families["scenesync_persist_duration_seconds"].GetMetric()); got != 2 {
		t.Errorf("persist_duration series = %d, want 2", got)
	}
	if got := counterWithLabels(families["scenesync_fanout_frames_total"], "origin", "local"); got != 4 {
		t.Errorf("fanout_frames{local} = %v, want 4", got)
	}
	if _, ok := families["scenesync_fanout_frames_total"]; ok {
		if got := counterWithLabels(families["scenesync_fanout_frames_total"], "origin", "bus"); got != 0 {
			t.Errorf("fanout_frames{bus} = %v, want 0", got)
		}
	}
	if got := families["scenesync_room_memberships"].GetMetric()[0].GetGauge().GetValue(); got != 7 {
		t.Errorf("room_memberships = %v, want 7", got)
	}
	if got := families["scenesync_store_up"].GetMetric()[0].GetGauge().GetValue(); got != 0 {
		t.Errorf("store_up = %v, want 0 after a failed probe", got)
	}
	if got := families["scenesync_store_probe_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("store_probe samples = %d, want 2", got)
	}
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(reg)
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

// counterWithLabels returns the counter value of the series matching all
// name/value label pairs, or 0 if none does.
func counterWithLabels(mf *dto.MetricFamily, pairs ...string) float64 {
	for _, metric := range mf.GetMetric() {
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		match := true
		for i := 0; i+1 < len(pairs); i += 2 {
			if labels[pairs[i]] != pairs[i+1] {
				match = false
				break
			}
		}
		if match {
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
