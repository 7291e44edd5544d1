package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackURL(t *testing.T) {
	t.Run("guild only", func(t *testing.T) {
		got := CallbackURL("https://relay.example.com/", GitHubWebhookPath, "123")
		assert.Equal(t, "https://relay.example.com/github-webhook?guildId=123", got)
	})

	t.Run("with secret", func(t *testing.T) {
		got := CallbackURL("https://relay.example.com", TrelloWebhookPath, "123", "secretId", "s3cr3t")
		assert.Equal(t, "https://relay.example.com/trello-webhook?guildId=123&secretId=s3cr3t", got)
	})

	t.Run("escapes values", func(t *testing.T) {
		got := CallbackURL("https://relay.example.com", GoogleCalendarWebhookPath, "a b&c")
		assert.Equal(t, "https://relay.example.com/google-webhook?guildId=a+b%26c", got)
	})
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, 0x0079BF, ParseColor("#0079BF"))
	assert.Equal(t, 0x800080, ParseColor("800080"))
	assert.Equal(t, 0xFFA500, ParseColor("#ffa500"))
	assert.Equal(t, 0, ParseColor("#12345"))
	assert.Equal(t, 0, ParseColor("#GGGGGG"))
}
