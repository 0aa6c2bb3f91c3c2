package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"agroeye/internal/metrics"
	"agroeye/internal/model"
	"agroeye/internal/query"
	"agroeye/internal/snapshot"
)

func runCollection[R model.Tagged[T], T model.Tag[T]](s *Server, w http.ResponseWriter, r *http.Request, collection string, records []R, extra func(R) bool) {
	params := r.URL.Query()
	tag, err := query.ParseFilter[T](params.Get("tag"))
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(collection, "invalid").Inc()
		s.writeError(w, r, err)
		return
	}
	res, err := query.Run[R, T](s.Classifier(), records, query.Query[T]{Text: params.Get("q"), Tag: tag})
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(collection, "invalid").Inc()
		s.writeError(w, r, err)
		return
	}
	if extra != nil {
		res.Items = query.FilterBy(res.Items, func(a query.Annotated[R]) bool { return extra(a.Record) })
		res.Matched = len(res.Items)
	}
	metrics.QueriesTotal.WithLabelValues(collection, "ok").Inc()
	metrics.QueryMatched.WithLabelValues(collection).Observe(float64(res.Matched))
	for _, item := range res.Items {
		observeStatuses(item.Statuses)
	}
	writeJSON(w, http.StatusOK, res)
}

func observeStatuses(statuses map[model.MetricKind]model.Status) {
	for kind, status := range statuses {
		metrics.ClassificationsTotal.WithLabelValues(string(kind), string(status)).Inc()
	}
}

// parseEnum reads an optional secondary filter; "" and "all" disable it.
func parseEnum[T model.Tag[T]](name, raw string) (T, bool, error) {
	var zero T
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return zero, false, nil
	}
	v := T(strings.ToLower(raw))
	if !v.Valid() {
		return zero, false, model.Invalid("unknown %s %q", name, raw)
	}
	return v, true, nil
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	runCollection[model.Sensor, model.SensorState](s, w, r, "sensors", snap.Sensors, nil)
}

// handleAlerts also accepts category= and unread=true.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	category, byCategory, err := parseEnum[model.AlertCategory]("category", r.URL.Query().Get("category"))
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("alerts", "invalid").Inc()
		s.writeError(w, r, err)
		return
	}
	unread := r.URL.Query().Get("unread") == "true"
	var extra func(model.Alert) bool
	if byCategory || unread {
		extra = func(a model.Alert) bool {
			if byCategory && a.Category != category {
				return false
			}
			return !unread || !a.IsRead
		}
	}
	snap := s.store.Snapshot()
	runCollection[model.Alert, model.AlertPriority](s, w, r, "alerts", snap.Alerts, extra)
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	runCollection[model.Dataset, model.DatasetStatus](s, w, r, "datasets", snap.Datasets, nil)
}

// handleUsers also accepts status=active|inactive.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	status, byStatus, err := parseEnum[model.UserStatus]("status", r.URL.Query().Get("status"))
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("users", "invalid").Inc()
		s.writeError(w, r, err)
		return
	}
	var extra func(model.User) bool
	if byStatus {
		extra = func(u model.User) bool { return u.Status == status }
	}
	snap := s.store.Snapshot()
	runCollection[model.User, model.UserRole](s, w, r, "users", snap.Users, extra)
}

func (s *Server) handleMapNodes(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	runCollection[model.MapNode, model.NodeHealth](s, w, r, "map", snap.MapNodes, nil)
}

func detail[R model.Record](s *Server, w http.ResponseWriter, r *http.Request, kind string, records []R) {
	id := mux.Vars(r)["id"]
	rec, ok := query.FindByID(records, id)
	if !ok {
		s.writeError(w, r, &snapshot.NotFoundError{Kind: kind, ID: id})
		return
	}
	annotated, err := query.ClassifyRecord(s.Classifier(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	observeStatuses(annotated.Statuses)
	writeJSON(w, http.StatusOK, annotated)
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	detail(s, w, r, "sensor", s.store.Snapshot().Sensors)
}

func (s *Server) handleMapNode(w http.ResponseWriter, r *http.Request) {
	detail(s, w, r, "map node", s.store.Snapshot().MapNodes)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.MarkAlertRead(id); err != nil {
		metrics.StateTransitionsTotal.WithLabelValues("mark_read", "not_found").Inc()
		s.writeError(w, r, err)
		return
	}
	s.transitioned("mark_read", "alert_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": s.store.Version()})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	changed := s.store.MarkAllAlertsRead()
	s.transitioned("mark_all_read", "changed", changed)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "changed": changed, "version": s.store.Version()})
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteAlert(id); err != nil {
		metrics.StateTransitionsTotal.WithLabelValues("delete_alert", "not_found").Inc()
		s.writeError(w, r, err)
		return
	}
	s.transitioned("delete_alert", "alert_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": s.store.Version()})
}

func (s *Server) transitioned(action string, args ...any) {
	metrics.StateTransitionsTotal.WithLabelValues(action, "ok").Inc()
	metrics.SnapshotVersion.Set(float64(s.store.Version()))
	if s.logger != nil {
		s.logger.Info("snapshot updated", append([]any{"action", action, "version", s.store.Version()}, args...)...)
	}
}

type dashboardResponse struct {
	Sensors   sensorSummary            `json:"sensors"`
	Alerts    alertSummary             `json:"alerts"`
	Users     userSummary              `json:"users"`
	Datasets  int                      `json:"datasets"`
	MapHealth map[model.NodeHealth]int `json:"map_health"`
	Version   uint64                   `json:"version"`
}

type sensorSummary struct {
	Total      int `json:"total"`
	Online     int `json:"online"`
	Offline    int `json:"offline"`
	LowBattery int `json:"low_battery"`
}

type alertSummary struct {
	Total      int                         `json:"total"`
	Unread     int                         `json:"unread"`
	ByPriority map[model.AlertPriority]int `json:"by_priority"`
}

type userSummary struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	c := s.Classifier()

	byPriority, err := query.CountByTag[model.Alert, model.AlertPriority](snap.Alerts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	health, err := query.CountByTag[model.MapNode, model.NodeHealth](snap.MapNodes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	online := query.Count(snap.Sensors, func(x model.Sensor) bool { return x.Online })
	lowBattery := query.Count(snap.Sensors, func(x model.Sensor) bool {
		status, err := c.Classify(model.MetricBattery, x.Battery)
		return err == nil && status == model.StatusLow
	})

	writeJSON(w, http.StatusOK, dashboardResponse{
		Sensors: sensorSummary{
			Total:      len(snap.Sensors),
			Online:     online,
			Offline:    len(snap.Sensors) - online,
			LowBattery: lowBattery,
		},
		Alerts: alertSummary{
			Total:      len(snap.Alerts),
			Unread:     query.Count(snap.Alerts, func(a model.Alert) bool { return !a.IsRead }),
			ByPriority: byPriority,
		},
		Users: userSummary{
			Total:  len(snap.Users),
			Active: query.Count(snap.Users, func(u model.User) bool { return u.Status == model.UserActive }),
		},
		Datasets:  len(snap.Datasets),
		MapHealth: health,
		Version:   s.store.Version(),
	})
}
