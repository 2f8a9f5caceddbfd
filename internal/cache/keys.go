package cache

import (
	"fmt"
	"time"
)

// Keys for the user-facing caches. The mcq package owns its own mcq:* key
// family since publish invalidation is defined next to it.
const (
	YouTubeKeyIndexKey   = "currentYouTubeApiKeyIndex"
	loginLockKeyTemplate = "lock:login:%s"
)

const (
	TTLBlogPage = 5 * time.Minute

	TTLUser     = 7 * 24 * time.Hour
	TTLState    = 7 * 24 * time.Hour
	TTLAnswer   = 7 * 24 * time.Hour
	TTLProgress = 7 * 24 * time.Hour
)

func UserBySubKey(sub string) string  { return "user:google_sub:" + sub }
func UserByIDKey(id int64) string     { return fmt.Sprintf("user:id:%d", id) }
func UserStateKey(id int64) string    { return fmt.Sprintf("user_state:%d", id) }
func UserProgressKey(id int64) string { return fmt.Sprintf("progress:%d", id) }
func AnswerKey(userID int64, mcqID string) string {
	return fmt.Sprintf("ans:%d:%s", userID, mcqID)
}

func LoginLockKey(sub string) string { return fmt.Sprintf(loginLockKeyTemplate, sub) }

func BlogPageKey(section string, page int) string {
	return fmt.Sprintf("blog:%s:%d", section, page)
}
func BlogPattern(section string) string { return "blog:" + section + ":*" }
