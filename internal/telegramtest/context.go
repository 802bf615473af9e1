// Package telegramtest provides a recording tele.Context implementation for
// handler tests. Only the methods the handlers actually use are implemented;
// anything else panics through the embedded nil interface.
package telegramtest

import (
	tele "gopkg.in/telebot.v4"
)

// Sent records one outbound payload with its options.
type Sent struct {
	What any
	Opts []any
}

// Context is a recording stand-in for tele.Context.
type Context struct {
	tele.Context

	ChatV     *tele.Chat
	SenderV   *tele.User
	TextV     string
	MessageV  *tele.Message
	CallbackV *tele.Callback

	store map[string]any

	SentMsgs  []Sent
	Albums    []tele.Album
	Edits     []Sent
	Responses []*tele.CallbackResponse
	Deletes   int
}

// NewContext builds a context for a private chat with the given id.
func NewContext(chatID int64) *Context {
	return &Context{
		ChatV:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
		SenderV: &tele.User{ID: chatID},
		store:   make(map[string]any),
	}
}

// WithText models an inbound text message.
func (c *Context) WithText(text string) *Context {
	c.TextV = text
	c.MessageV = &tele.Message{Text: text, Chat: c.ChatV, Sender: c.SenderV}
	c.CallbackV = nil
	return c
}

// WithPhoto models an inbound photo message carrying one file id.
func (c *Context) WithPhoto(fileID string) *Context {
	c.TextV = ""
	c.MessageV = &tele.Message{
		Chat:   c.ChatV,
		Sender: c.SenderV,
		Photo:  &tele.Photo{File: tele.File{FileID: fileID}},
	}
	c.CallbackV = nil
	return c
}

// WithCallback models an inline button press using Telebot's raw
// \f<unique>|<payload> data encoding.
func (c *Context) WithCallback(unique, payload string) *Context {
	c.TextV = ""
	c.MessageV = &tele.Message{Chat: c.ChatV, Sender: c.SenderV}
	c.CallbackV = &tele.Callback{
		Data:    "\f" + unique + "|" + payload,
		Message: c.MessageV,
		Sender:  c.SenderV,
	}
	return c
}

func (c *Context) Update() tele.Update {
	return tele.Update{Message: c.MessageV, Callback: c.CallbackV}
}

func (c *Context) Chat() *tele.Chat         { return c.ChatV }
func (c *Context) Sender() *tele.User       { return c.SenderV }
func (c *Context) Text() string             { return c.TextV }
func (c *Context) Message() *tele.Message   { return c.MessageV }
func (c *Context) Callback() *tele.Callback { return c.CallbackV }

func (c *Context) Get(key string) any {
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.store[key] = val
}

func (c *Context) Send(what any, opts ...any) error {
	c.SentMsgs = append(c.SentMsgs, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) SendAlbum(a tele.Album, _ ...any) error {
	c.Albums = append(c.Albums, a)
	return nil
}

func (c *Context) Edit(what any, opts ...any) error {
	c.Edits = append(c.Edits, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		c.Responses = append(c.Responses, &tele.CallbackResponse{})
		return nil
	}
	c.Responses = append(c.Responses, resp...)
	return nil
}

func (c *Context) Delete() error {
	c.Deletes++
	return nil
}

// SentTexts returns the string payloads of every Send call.
func (c *Context) SentTexts() []string {
	out := make([]string, 0, len(c.SentMsgs))
	for _, s := range c.SentMsgs {
		if str, ok := s.What.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// LastMarkup returns the reply markup of the most recent Send, if any.
func (c *Context) LastMarkup() *tele.ReplyMarkup {
	if len(c.SentMsgs) == 0 {
		return nil
	}
	for _, opt := range c.SentMsgs[len(c.SentMsgs)-1].Opts {
		switch v := opt.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			if v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		}
	}
	return nil
}
