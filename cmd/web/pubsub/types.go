package pubsub

import "github.com/mailvet/mailvet/types"

// Notification is the wire format exchanged between instances. SenderID lets an instance skip notifications
// it published itself.
type Notification struct {
	SenderID string `json:"sid"`
	Data     Data   `json:"data"`
}

type Data struct {
	Local        string         `json:"local"`
	Domain       string         `json:"domain"`
	ValidFormat  bool           `json:"vf"`
	HasMX        types.Tristate `json:"mx"`
	DomainExists types.Tristate `json:"de"`
	Status       types.Status   `json:"st"`
}
