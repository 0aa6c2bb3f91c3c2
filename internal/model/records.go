package model

type SensorState string

const (
	SensorOnline  SensorState = "online"
	SensorOffline SensorState = "offline"
)

func (SensorState) Values() []SensorState { return []SensorState{SensorOnline, SensorOffline} }
func (s SensorState) Valid() bool         { return contains(s.Values(), s) }

type Sensor struct {
	ID           string  `json:"id" yaml:"id" db:"id"`
	Name         string  `json:"name" yaml:"name" db:"name"`
	Location     string  `json:"location" yaml:"location" db:"location"`
	Online       bool    `json:"online" yaml:"online" db:"online"`
	Temperature  float64 `json:"temperature" yaml:"temperature" db:"temperature"`
	Humidity     float64 `json:"humidity" yaml:"humidity" db:"humidity"`
	SoilMoisture float64 `json:"soil_moisture" yaml:"soil_moisture" db:"soil_moisture"`
	Battery      float64 `json:"battery" yaml:"battery" db:"battery"`
	Signal       int     `json:"signal" yaml:"signal" db:"signal"`
	LastUpdate   string  `json:"last_update" yaml:"last_update" db:"last_update"`
}

func (s Sensor) RecordID() string       { return s.ID }
func (s Sensor) SearchFields() []string { return []string{s.Name, s.Location, s.ID} }

func (s Sensor) Tag() SensorState {
	if s.Online {
		return SensorOnline
	}
	return SensorOffline
}

// Readings reports the environmental metrics as unavailable while the sensor
// is offline. Battery is reported regardless.
func (s Sensor) Readings() []Reading {
	return []Reading{
		{Kind: MetricTemperature, Value: s.Temperature, Available: s.Online},
		{Kind: MetricHumidity, Value: s.Humidity, Available: s.Online},
		{Kind: MetricSoilMoisture, Value: s.SoilMoisture, Available: s.Online},
		{Kind: MetricBattery, Value: s.Battery, Available: true},
	}
}

func (s Sensor) Validate() error {
	if err := requireID("sensor", s.ID); err != nil {
		return err
	}
	if err := requireField("sensor", s.ID, "name", s.Name); err != nil {
		return err
	}
	return requireField("sensor", s.ID, "location", s.Location)
}

type AlertPriority string

const (
	PriorityHigh   AlertPriority = "high"
	PriorityMedium AlertPriority = "medium"
	PriorityNormal AlertPriority = "normal"
)

func (AlertPriority) Values() []AlertPriority {
	return []AlertPriority{PriorityHigh, PriorityMedium, PriorityNormal}
}
func (p AlertPriority) Valid() bool { return contains(p.Values(), p) }

type AlertCategory string

const (
	CategoryTemperature AlertCategory = "temperature"
	CategoryMoisture    AlertCategory = "moisture"
	CategoryDisease     AlertCategory = "disease"
	CategoryPest        AlertCategory = "pest"
	CategoryWeather     AlertCategory = "weather"
	CategoryBattery     AlertCategory = "battery"
	CategorySystem      AlertCategory = "system"
	CategoryGrowth      AlertCategory = "growth"
)

func (AlertCategory) Values() []AlertCategory {
	return []AlertCategory{
		CategoryTemperature, CategoryMoisture, CategoryDisease, CategoryPest,
		CategoryWeather, CategoryBattery, CategorySystem, CategoryGrowth,
	}
}
func (c AlertCategory) Valid() bool { return contains(c.Values(), c) }

type Alert struct {
	ID         string        `json:"id" yaml:"id" db:"id"`
	Priority   AlertPriority `json:"type" yaml:"type" db:"priority"`
	Category   AlertCategory `json:"category" yaml:"category" db:"category"`
	Message    string        `json:"message" yaml:"message" db:"message"`
	Confidence float64       `json:"confidence" yaml:"confidence" db:"confidence"`
	Timestamp  string        `json:"timestamp" yaml:"timestamp" db:"ts"`
	Location   string        `json:"location" yaml:"location" db:"location"`
	IsRead     bool          `json:"is_read" yaml:"is_read" db:"is_read"`
}

func (a Alert) RecordID() string { return a.ID }
func (a Alert) SearchFields() []string {
	return []string{a.Message, a.Location, string(a.Category), a.ID}
}
func (a Alert) Tag() AlertPriority { return a.Priority }

func (a Alert) Readings() []Reading {
	return []Reading{{Kind: MetricConfidence, Value: a.Confidence, Available: true}}
}

func (a Alert) Validate() error {
	if err := requireID("alert", a.ID); err != nil {
		return err
	}
	if err := requireField("alert", a.ID, "message", a.Message); err != nil {
		return err
	}
	if err := requireField("alert", a.ID, "location", a.Location); err != nil {
		return err
	}
	if !a.Priority.Valid() {
		return Invalid("alert %q has unknown type %q", a.ID, a.Priority)
	}
	if !a.Category.Valid() {
		return Invalid("alert %q has unknown category %q", a.ID, a.Category)
	}
	return nil
}

type DatasetStatus string

const (
	DatasetActive     DatasetStatus = "active"
	DatasetProcessing DatasetStatus = "processing"
	DatasetArchived   DatasetStatus = "archived"
)

func (DatasetStatus) Values() []DatasetStatus {
	return []DatasetStatus{DatasetActive, DatasetProcessing, DatasetArchived}
}
func (s DatasetStatus) Valid() bool { return contains(s.Values(), s) }

type DatasetType string

const (
	DatasetImage DatasetType = "image"
	DatasetCSV   DatasetType = "csv"
)

func (DatasetType) Values() []DatasetType { return []DatasetType{DatasetImage, DatasetCSV} }
func (t DatasetType) Valid() bool         { return contains(t.Values(), t) }

type Dataset struct {
	ID           string        `json:"id" yaml:"id" db:"id"`
	Name         string        `json:"name" yaml:"name" db:"name"`
	Type         DatasetType   `json:"type" yaml:"type" db:"kind"`
	Size         string        `json:"size" yaml:"size" db:"size"`
	Records      int           `json:"records" yaml:"records" db:"records"`
	UploadedBy   string        `json:"uploaded_by" yaml:"uploaded_by" db:"uploaded_by"`
	UploadedDate string        `json:"uploaded_date" yaml:"uploaded_date" db:"uploaded_date"`
	Status       DatasetStatus `json:"status" yaml:"status" db:"status"`
}

func (d Dataset) RecordID() string       { return d.ID }
func (d Dataset) SearchFields() []string { return []string{d.Name, d.ID} }
func (d Dataset) Tag() DatasetStatus     { return d.Status }
func (d Dataset) Readings() []Reading    { return nil }

func (d Dataset) Validate() error {
	if err := requireID("dataset", d.ID); err != nil {
		return err
	}
	if err := requireField("dataset", d.ID, "name", d.Name); err != nil {
		return err
	}
	if !d.Status.Valid() {
		return Invalid("dataset %q has unknown status %q", d.ID, d.Status)
	}
	if !d.Type.Valid() {
		return Invalid("dataset %q has unknown type %q", d.ID, d.Type)
	}
	return nil
}

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

func (UserRole) Values() []UserRole { return []UserRole{RoleAdmin, RoleManager, RoleUser} }
func (r UserRole) Valid() bool      { return contains(r.Values(), r) }

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (UserStatus) Values() []UserStatus { return []UserStatus{UserActive, UserInactive} }
func (s UserStatus) Valid() bool        { return contains(s.Values(), s) }

type User struct {
	ID        string     `json:"id" yaml:"id" db:"id"`
	Name      string     `json:"name" yaml:"name" db:"name"`
	Email     string     `json:"email" yaml:"email" db:"email"`
	Role      UserRole   `json:"role" yaml:"role" db:"role"`
	Status    UserStatus `json:"status" yaml:"status" db:"status"`
	LastLogin string     `json:"last_login" yaml:"last_login" db:"last_login"`
	Fields    int        `json:"fields" yaml:"fields" db:"fields"`
}

func (u User) RecordID() string       { return u.ID }
func (u User) SearchFields() []string { return []string{u.Name, u.Email} }
func (u User) Tag() UserRole          { return u.Role }
func (u User) Readings() []Reading    { return nil }

func (u User) Validate() error {
	if err := requireID("user", u.ID); err != nil {
		return err
	}
	if err := requireField("user", u.ID, "name", u.Name); err != nil {
		return err
	}
	if err := requireField("user", u.ID, "email", u.Email); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return Invalid("user %q has unknown role %q", u.ID, u.Role)
	}
	if !u.Status.Valid() {
		return Invalid("user %q has unknown status %q", u.ID, u.Status)
	}
	return nil
}

type NodeHealth string

const (
	HealthHealthy NodeHealth = "healthy"
	HealthStress  NodeHealth = "stress"
	HealthDisease NodeHealth = "disease"
)

func (NodeHealth) Values() []NodeHealth {
	return []NodeHealth{HealthHealthy, HealthStress, HealthDisease}
}
func (h NodeHealth) Valid() bool { return contains(h.Values(), h) }

// MapNode is a sensor pin on the field map. X and Y are percentages of the
// map extent.
type MapNode struct {
	ID          string     `json:"id" yaml:"id" db:"id"`
	Name        string     `json:"name" yaml:"name" db:"name"`
	X           float64    `json:"x" yaml:"x" db:"x"`
	Y           float64    `json:"y" yaml:"y" db:"y"`
	Temperature float64    `json:"temperature" yaml:"temperature" db:"temperature"`
	Moisture    float64    `json:"moisture" yaml:"moisture" db:"moisture"`
	Health      NodeHealth `json:"status" yaml:"status" db:"health"`
}

func (n MapNode) RecordID() string       { return n.ID }
func (n MapNode) SearchFields() []string { return []string{n.Name, n.ID} }
func (n MapNode) Tag() NodeHealth        { return n.Health }

func (n MapNode) Readings() []Reading {
	return []Reading{
		{Kind: MetricTemperature, Value: n.Temperature, Available: true},
		{Kind: MetricSoilMoisture, Value: n.Moisture, Available: true},
	}
}

func (n MapNode) Validate() error {
	if err := requireID("map node", n.ID); err != nil {
		return err
	}
	if err := requireField("map node", n.ID, "name", n.Name); err != nil {
		return err
	}
	if !n.Health.Valid() {
		return Invalid("map node %q has unknown status %q", n.ID, n.Health)
	}
	return nil
}

// Snapshot is one consistent set of collections handed to the query layer.
type Snapshot struct {
	Sensors  []Sensor  `json:"sensors" yaml:"sensors"`
	Alerts   []Alert   `json:"alerts" yaml:"alerts"`
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
	Users    []User    `json:"users" yaml:"users"`
	MapNodes []MapNode `json:"map_nodes" yaml:"map_nodes"`
}

// Clone copies every collection so the result shares no backing arrays.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Sensors:  append([]Sensor(nil), s.Sensors...),
		Alerts:   append([]Alert(nil), s.Alerts...),
		Datasets: append([]Dataset(nil), s.Datasets...),
		Users:    append([]User(nil), s.Users...),
		MapNodes: append([]MapNode(nil), s.MapNodes...),
	}
}
