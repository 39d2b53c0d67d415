package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationHTML(t *testing.T) {
	body := FollowerHTML("<bob>", "/profile/bob/")
	assert.Contains(t, body, "&lt;bob&gt;")
	assert.Contains(t, body, `href="/profile/bob/"`)

	body = CommentHTML("alice", "/posts/3/")
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "/posts/3/")
}

func TestMakeKeyFromID(t *testing.T) {
	assert.Equal(t, "18446744073709551615", MakeKeyFromID(^uint64(0)))
}
