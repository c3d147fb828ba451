package truffe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// State of a reservation on the Truffe side. The wire values are ordered
// by their numeric prefix.
type State string

const (
	StateDraft  State = "0_draft"
	StateAsking State = "1_asking"
	StateOnline State = "2_online"
)

var stateLabels = map[State]string{
	StateDraft:  "en brouillon",
	StateAsking: "en cours de validation",
	StateOnline: "validée",
}

// Label returns the user-facing description of the state.
func (s State) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return string(s)
}

// AllStates returns every known state.
func AllStates() []State {
	return []State{StateDraft, StateAsking, StateOnline}
}

// DefaultStates is the subset shown by default; ExtendedStates adds
// drafts for the "show everything" toggle.
var (
	DefaultStates  = []State{StateAsking, StateOnline}
	ExtendedStates = AllStates()
)

// Reservation is a borrowed copy of a record owned by Truffe. It is
// fetched and displayed, never mutated here.
type Reservation struct {
	PK              int
	Title           string
	AskingUnitName  string
	State           State
	StartDate       time.Time
	EndDate         time.Time
	ContactPhone    string
	ContactTelegram string
	Reason          string
	Remarks         string
	AgreementURL    string
}

// fields requested from the supply-reservation endpoint.
var queryFields = []string{
	"title", "state", "asking_unit_name", "asking_external_unit", "asking_external_person",
	"contact_telegram", "start_date", "end_date", "contact_phone", "reason", "remarks",
}

type reservationRecord struct {
	PK                   int    `json:"pk"`
	Title                string `json:"title"`
	AskingUnitName       string `json:"asking_unit_name"`
	AskingExternalUnit   string `json:"asking_external_unit"`
	AskingExternalPerson string `json:"asking_external_person"`
	State                string `json:"state"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	ContactPhone         string `json:"contact_phone"`
	ContactTelegram      string `json:"contact_telegram"`
	Reason               string `json:"reason"`
	Remarks              string `json:"remarks"`
}

type reservationsResponse struct {
	SupplyReservations []reservationRecord `json:"supplyreservations"`
}

// Client talks to the Truffe logistics API with bearer-token auth.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
	}
}

// FetchReservations downloads the full reservation set. Records missing
// a primary key or carrying an unknown state are rejected at this
// boundary. Dates on the wire are UTC.
func (c *Client) FetchReservations() ([]Reservation, error) {
	url := c.BaseURL + "/logistics/api/supplyreservations?" + strings.Join(queryFields, "&")

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body error: %v", err)
	}

	var parsed reservationsResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response error: %v", err)
	}

	reservations := make([]Reservation, 0, len(parsed.SupplyReservations))
	for _, record := range parsed.SupplyReservations {
		res, err := record.toReservation()
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %v", record.PK, err)
		}
		reservations = append(reservations, res)
	}
	return reservations, nil
}

func (r reservationRecord) toReservation() (Reservation, error) {
	if r.PK == 0 {
		return Reservation{}, fmt.Errorf("missing primary key")
	}
	state := State(r.State)
	if _, ok := stateLabels[state]; !ok {
		return Reservation{}, fmt.Errorf("unknown state %q", r.State)
	}
	start, err := parseAPIDate(r.StartDate)
	if err != nil {
		return Reservation{}, fmt.Errorf("start date: %v", err)
	}
	end, err := parseAPIDate(r.EndDate)
	if err != nil {
		return Reservation{}, fmt.Errorf("end date: %v", err)
	}

	unitName := r.AskingUnitName
	if unitName == "" {
		// External requesters have no internal unit; synthesize one.
		unitName = fmt.Sprintf("%s (%s)", r.AskingExternalUnit, r.AskingExternalPerson)
	}

	return Reservation{
		PK:              r.PK,
		Title:           r.Title,
		AskingUnitName:  unitName,
		State:           state,
		StartDate:       start,
		EndDate:         end,
		ContactPhone:    r.ContactPhone,
		ContactTelegram: r.ContactTelegram,
		Reason:          r.Reason,
		Remarks:         r.Remarks,
	}, nil
}

func parseAPIDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// AgreementPDF downloads the loan agreement document for a reservation.
func (c *Client) AgreementPDF(pk int) ([]byte, error) {
	url := fmt.Sprintf("%s/loanagreement/%d/pdf/", c.BaseURL, pk)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
