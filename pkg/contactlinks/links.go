// Package contactlinks builds the WhatsApp and Messenger links customers use
// to follow up on an order.
package contactlinks

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultWhatsAppPhone = "+22997123456"
	DefaultMessengerPage = "afrifood.benin"
)

// Builder renders deep links for one restaurant contact set.
type Builder struct {
	phone string
	page  string
}

func New(phone, page string) Builder {
	if strings.TrimSpace(phone) == "" {
		phone = DefaultWhatsAppPhone
	}
	if strings.TrimSpace(page) == "" {
		page = DefaultMessengerPage
	}
	return Builder{phone: phone, page: page}
}

// Links groups both deep links for one display id.
type Links struct {
	WhatsApp  string `json:"whatsapp"`
	Messenger string `json:"messenger"`
}

func (b Builder) For(id string) Links {
	return Links{WhatsApp: b.WhatsApp(id), Messenger: b.Messenger(id)}
}

func (b Builder) WhatsApp(id string) string {
	text := fmt.Sprintf("Bonjour AfriFood! Je souhaite suivre ma commande ID: %s", id)
	return "https://wa.me/" + b.phone + "?text=" + encodeComponent(text)
}

func (b Builder) Messenger(id string) string {
	return "https://m.me/" + b.page + "?text=" + encodeComponent("Commande ID: "+id)
}

// componentUnescaper undoes the escapes QueryEscape applies but a browser's
// encodeURIComponent does not.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
