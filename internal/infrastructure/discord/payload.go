package discord

import (
	"time"

	"DisclosureNotifier/internal/domain"
)

// wirePayload is the Discord webhook body shape.
type wirePayload struct {
	Username string      `json:"username,omitempty"`
	Embeds   []wireEmbed `json:"embeds"`
}

type wireEmbed struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Color       int         `json:"color"`
	Fields      []wireField `json:"fields,omitempty"`
	Footer      *wireFooter `json:"footer,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
}

type wireField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type wireFooter struct {
	Text string `json:"text"`
}

// toWirePayload maps the channel-agnostic message onto the Discord format.
func toWirePayload(msg domain.Message) wirePayload {
	embed := wireEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		URL:         msg.URL,
		Color:       msg.Color,
	}

	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, wireField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	if msg.Footer != "" {
		embed.Footer = &wireFooter{Text: msg.Footer}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}

	return wirePayload{Username: msg.Username, Embeds: []wireEmbed{embed}}
}
