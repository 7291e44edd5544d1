package trello

import "time"

// actionEnvelope is the body Trello posts for every model change
type actionEnvelope struct {
	Action action `json:"action"`
}

type action struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Date string     `json:"date"`
	Data actionData `json:"data"`
}

type actionData struct {
	Card       *card          `json:"card,omitempty"`
	List       *list          `json:"list,omitempty"`
	Board      *boardRef      `json:"board,omitempty"`
	ListBefore *list          `json:"listBefore,omitempty"`
	ListAfter  *list          `json:"listAfter,omitempty"`
	Old        map[string]any `json:"old,omitempty"`
}

type card struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	ShortLink string `json:"shortLink"`
	Closed    bool   `json:"closed"`
}

type list struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

type boardRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a action) occurredAt() time.Time {
	if t, err := time.Parse(time.RFC3339, a.Date); err == nil {
		return t
	}
	return time.Now()
}

func (d actionData) cardClosed() bool {
	return d.Card != nil && d.Card.Closed
}

func (d actionData) listClosed() bool {
	return d.List != nil && d.List.Closed
}

func (d actionData) hasListTransition() bool {
	return d.ListBefore != nil || d.ListAfter != nil
}

func (d actionData) hasOldListID() bool {
	_, ok := d.Old["idList"]
	return ok
}

func (d actionData) boardName() string {
	if d.Board == nil {
		return ""
	}
	return d.Board.Name
}
