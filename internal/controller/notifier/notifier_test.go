package notifier_test

import (
	"log/slog"
	"testing"

	"github.com/salvatore/habitat-monitor/internal/controller/notifier"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifiers_Notify(t *testing.T) {
	f := fakeSlackSender{channels: []slack.Channel{
		makeChannel("C1", "general", true, false),
		makeChannel("C2", "random", false, false),
		makeChannel("C3", "old", true, true),
	}}
	l := notifier.Notifiers{
		&notifier.SLogNotifier{Logger: slog.New(slog.DiscardHandler)},
		&notifier.SlackNotifier{Logger: slog.New(slog.DiscardHandler), SlackSender: &f},
	}

	l.Notify("heaterA: switching on (inside: 68.0°F, target 70.0-75.0°F)")

	require.Len(t, f.posted, 1)
	assert.Equal(t, "C1", f.posted[0])
	assert.Equal(t, 1, f.authCalls)

	l.Notify("heaterA: switching off (inside: 76.0°F, target 70.0-75.0°F)")
	assert.Len(t, f.posted, 2)
	assert.Equal(t, 1, f.authCalls, "user ID should be cached")
}

var _ notifier.SlackSender = &fakeSlackSender{}

type fakeSlackSender struct {
	channels  []slack.Channel
	posted    []string
	authCalls int
}

func (f *fakeSlackSender) PostMessage(channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.posted = append(f.posted, channelID)
	return "", "", nil
}

func (f *fakeSlackSender) GetConversations(_ *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	return f.channels, "", nil
}

func (f *fakeSlackSender) AuthTest() (*slack.AuthTestResponse, error) {
	f.authCalls++
	return &slack.AuthTestResponse{UserID: "U1"}, nil
}

func makeChannel(id, name string, member, archived bool) slack.Channel {
	var c slack.Channel
	c.ID = id
	c.Name = name
	c.IsMember = member
	c.IsArchived = archived
	return c
}
