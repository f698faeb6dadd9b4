package transfer

import (
	"creatorhub/pkg/errs"
)

// Upstream platform payloads. Every response body is decoded into one of
// these and Validate()d before it reaches a caller, so malformed upstream
// data surfaces as ErrSchemaValidation instead of partial structs.

type PlatformProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	ProfileURL  string `json:"profile_url"`
	Subscribers int    `json:"subscribers_count"`
}

func (p *PlatformProfile) Validate() error {
	if p.ID == "" || p.Username == "" {
		return errs.SchemaValidation("profile response missing id or username")
	}
	return nil
}

type PlatformPost struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	MediaURLs []string `json:"media_urls"`
	PostedAt  string   `json:"posted_at"`
	Likes     int      `json:"likes_count"`
}

func (p *PlatformPost) Validate() error {
	if p.ID == "" {
		return errs.SchemaValidation("post response missing id")
	}
	return nil
}

type PlatformPostList struct {
	Posts []PlatformPost `json:"posts"`
}

func (l *PlatformPostList) Validate() error {
	for i := range l.Posts {
		if err := l.Posts[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

type PlatformMessage struct {
	ID         string `json:"id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Text       string `json:"text"`
	SentAt     string `json:"sent_at"`
}

func (m *PlatformMessage) Validate() error {
	if m.ID == "" || m.FromUserID == "" {
		return errs.SchemaValidation("message response missing id or sender")
	}
	return nil
}

type PlatformMessageList struct {
	Messages []PlatformMessage `json:"messages"`
}

func (l *PlatformMessageList) Validate() error {
	for i := range l.Messages {
		if err := l.Messages[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

type PlatformTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (t *PlatformTokenResponse) Validate() error {
	if t.AccessToken == "" {
		return errs.SchemaValidation("token response missing access_token")
	}
	return nil
}

// ConnectionCreation carries the credentials a creator pastes in when
// linking a platform account.
type ConnectionCreation struct {
	Platform     string `json:"platform" form:"platform"`
	AccessToken  string `json:"access_token" form:"access_token"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	ExpiresIn    int    `json:"expires_in" form:"expires_in"`
}

// Outbound write payloads.

type PlatformPostRequest struct {
	Text      string   `json:"text"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

type PlatformMessageRequest struct {
	ToUserID string `json:"to_user_id"`
	Text     string `json:"text"`
}

type PlatformMediaUpload struct {
	MediaID string `json:"media_id"`
	URL     string `json:"url"`
}

func (u *PlatformMediaUpload) Validate() error {
	if u.MediaID == "" {
		return errs.SchemaValidation("media upload response missing media_id")
	}
	return nil
}
