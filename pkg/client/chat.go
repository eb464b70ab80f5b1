package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	sseDataPrefix = "data:"
	sseDone       = "[DONE]"
)

// ErrEmptyReply is returned when a stream completes without any content.
var ErrEmptyReply = errors.New("chat stream carried no reply")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages      []Message `json:"messages"`
	HealthContext string    `json:"health_context,omitempty"`
	Personalize   bool      `json:"personalize,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Chat sends one turn and returns the full assistant reply. onDelta, when
// set, receives each content fragment as it arrives. A stream that ends
// before the [DONE] marker fails with io.ErrUnexpectedEOF and returns the
// partial reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest, onDelta func(string)) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, "/chat", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readAPIError(resp)
	}

	var reply strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == sseDone {
			return reply.String(), nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		reply.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return reply.String(), fmt.Errorf("failed to read chat stream: %w", err)
	}
	return reply.String(), fmt.Errorf("chat stream ended early: %w", io.ErrUnexpectedEOF)
}

// Conversation keeps the turns of one chat in memory and sends them one
// turn at a time.
type Conversation struct {
	client *Client

	mu            sync.Mutex
	messages      []Message
	healthContext string
	personalize   bool
}

func NewConversation(c *Client) *Conversation {
	return &Conversation{client: c}
}

// SetHealthContext attaches free-text personalisation to later turns.
func (cv *Conversation) SetHealthContext(text string) {
	cv.mu.Lock()
	cv.healthContext = text
	cv.mu.Unlock()
}

// SetPersonalize asks the server to use the signed-in user's stored profile.
func (cv *Conversation) SetPersonalize(on bool) {
	cv.mu.Lock()
	cv.personalize = on
	cv.mu.Unlock()
}

// Send appends the user turn and relays the whole conversation. The
// assistant turn is appended only when the stream completes. On failure
// the user turn stays in the history; call Resend to retry it. An empty
// reply counts as a failure.
func (cv *Conversation) Send(ctx context.Context, content string, onDelta func(string)) (string, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	cv.messages = append(cv.messages, Message{Role: RoleUser, Content: content})
	return cv.relayLocked(ctx, onDelta)
}

// Resend retries the conversation as it stands, without adding a turn.
func (cv *Conversation) Resend(ctx context.Context, onDelta func(string)) (string, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.relayLocked(ctx, onDelta)
}

func (cv *Conversation) relayLocked(ctx context.Context, onDelta func(string)) (string, error) {
	history := make([]Message, len(cv.messages))
	copy(history, cv.messages)

	reply, err := cv.client.Chat(ctx, ChatRequest{
		Messages:      history,
		HealthContext: cv.healthContext,
		Personalize:   cv.personalize,
	}, onDelta)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}

	cv.messages = append(cv.messages, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// Messages returns a copy of the history.
func (cv *Conversation) Messages() []Message {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	out := make([]Message, len(cv.messages))
	copy(out, cv.messages)
	return out
}
