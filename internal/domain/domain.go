package domain

import (
	"github.com/yungbote/pictures2pages-backend/internal/domain/auth"
	"github.com/yungbote/pictures2pages-backend/internal/domain/content"
	"github.com/yungbote/pictures2pages-backend/internal/domain/media"
	"github.com/yungbote/pictures2pages-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = auth.UserToken

	Image = media.Image

	GeneratedContent = content.GeneratedContent
	ContentKind      = content.Kind
	DetectedLabel    = content.DetectedLabel
)

const (
	ContentKindStory = content.KindStory
	ContentKindPoem  = content.KindPoem
)

var (
	ParseContentKind = content.ParseKind
	LabelNames       = content.LabelNames
)

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Image{},
		&GeneratedContent{},
	}
}
