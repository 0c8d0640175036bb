package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

func message(userID, channelID snowflake.ID, content string) discord.Message {
	return discord.Message{
		ID:        snowflake.ID(999),
		ChannelID: channelID,
		Author:    discord.User{ID: userID},
		Content:   content,
	}
}

func TestAwaitReceivesMatchingMessage(t *testing.T) {
	m := New()
	user, channel := snowflake.ID(1), snowflake.ID(2)

	done := make(chan struct{})
	var got discord.Message
	var err error
	go func() {
		defer close(done)
		got, err = m.Await(context.Background(), user, channel, nil, time.Second)
	}()

	// Wait until the goroutine has registered its wait.
	for i := 0; i < 100 && m.Pending() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	if claimed := m.Dispatch(message(user, channel, "hello")); !claimed {
		t.Fatal("dispatch should be claimed by the pending wait")
	}

	<-done
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if got.Content != "hello" {
		t.Errorf("got content %q, want %q", got.Content, "hello")
	}
	if m.Pending() != 0 {
		t.Errorf("pending waits = %d after delivery, want 0", m.Pending())
	}
}

func TestDispatchIgnoresWrongUserOrChannel(t *testing.T) {
	m := New()
	user, channel := snowflake.ID(1), snowflake.ID(2)

	go func() {
		_, _ = m.Await(context.Background(), user, channel, nil, 500*time.Millisecond)
	}()
	for i := 0; i < 100 && m.Pending() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	if m.Dispatch(message(snowflake.ID(7), channel, "wrong user")) {
		t.Error("message from another user must not be claimed")
	}
	if m.Dispatch(message(user, snowflake.ID(8), "wrong channel")) {
		t.Error("message in another channel must not be claimed")
	}
}

func TestDispatchRespectsPredicate(t *testing.T) {
	m := New()
	user, channel := snowflake.ID(1), snowflake.ID(2)

	isLink := func(msg discord.Message) bool {
		return strings.HasPrefix(msg.Content, "http")
	}

	done := make(chan struct{})
	var got discord.Message
	go func() {
		defer close(done)
		got, _ = m.Await(context.Background(), user, channel, isLink, time.Second)
	}()
	for i := 0; i < 100 && m.Pending() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	if m.Dispatch(message(user, channel, "just chatting")) {
		t.Error("non-matching content must not be claimed")
	}
	if !m.Dispatch(message(user, channel, "https://example.com/proof")) {
		t.Fatal("matching content should be claimed")
	}

	<-done
	if got.Content != "https://example.com/proof" {
		t.Errorf("got content %q, want the link", got.Content)
	}
}

func TestAwaitTimeout(t *testing.T) {
	m := New()

	_, err := m.Await(context.Background(), snowflake.ID(1), snowflake.ID(2), nil, 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if m.Pending() != 0 {
		t.Errorf("pending waits = %d after timeout, want 0", m.Pending())
	}
}

func TestAwaitContextCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := m.Await(ctx, snowflake.ID(1), snowflake.ID(2), nil, time.Minute)
		done <- err
	}()
	for i := 0; i < 100 && m.Pending() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if m.Pending() != 0 {
		t.Errorf("pending waits = %d after cancel, want 0", m.Pending())
	}
}

func TestOneMessageCompletesOneWait(t *testing.T) {
	m := New()
	user, channel := snowflake.ID(1), snowflake.ID(2)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := m.Await(context.Background(), user, channel, nil, 200*time.Millisecond)
			results <- err
		}()
	}
	for i := 0; i < 100 && m.Pending() < 2; i++ {
		time.Sleep(time.Millisecond)
	}

	if !m.Dispatch(message(user, channel, "only one of you")) {
		t.Fatal("dispatch should claim a wait")
	}

	var delivered, timedOut int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			delivered++
		} else if errors.Is(err, ErrTimeout) {
			timedOut++
		}
	}
	if delivered != 1 || timedOut != 1 {
		t.Errorf("delivered = %d, timed out = %d; want exactly one of each", delivered, timedOut)
	}
}
