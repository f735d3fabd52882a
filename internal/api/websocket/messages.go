package websocket

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Site messages
	MessageTypeSiteCreated   MessageType = "site_created"
	MessageTypeSiteUpdated   MessageType = "site_updated"
	MessageTypeLayoutUpdated MessageType = "layout_updated"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"

	// Replies to client commands
	MessageTypeSubscribed MessageType = "subscribed"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message. Messages with a SiteID only reach
// clients subscribed to that site or to all sites.
type Message struct {
	Type      MessageType `json:"type"`
	SiteID    string      `json:"site_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// LayoutUpdatedData is sent after a site's layout was recomputed
type LayoutUpdatedData struct {
	Trigger     string      `json:"trigger"`
	InstanceID  string      `json:"instance_id,omitempty"`
	DeviceCount int         `json:"device_count"`
	RowCount    int         `json:"row_count"`
	Layout      interface{} `json:"layout"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, siteID string, data interface{}) Message {
	return Message{
		Type:      msgType,
		SiteID:    siteID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewLayoutUpdatedMessage(siteID string, data LayoutUpdatedData) Message {
	return NewMessage(MessageTypeLayoutUpdated, siteID, data)
}

func NewSiteMessage(msgType MessageType, siteID string, site interface{}) Message {
	return NewMessage(msgType, siteID, site)
}

func NewSystemStatusMessage(status interface{}) Message {
	return NewMessage(MessageTypeSystemStatus, "", status)
}
