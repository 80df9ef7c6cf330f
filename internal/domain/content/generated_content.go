package content

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/pictures2pages-backend/internal/domain/user"
)

type Kind string

const (
	KindStory Kind = "story"
	KindPoem  Kind = "poem"
)

func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindStory:
		return KindStory, true
	case KindPoem:
		return KindPoem, true
	default:
		return "", false
	}
}

func (k Kind) Valid() bool {
	return k == KindStory || k == KindPoem
}

// GeneratedContent is one story or poem together with the three source images
// and the labels extracted from each. Image i and label set i always pair up.
type GeneratedContent struct {
	ID       uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind     Kind       `gorm:"type:varchar(16);not null;column:kind" json:"kind"`
	Title    string     `gorm:"not null;column:title" json:"title"`
	Content  string     `gorm:"type:text;not null;column:content" json:"content"`
	Theme    string     `gorm:"column:theme" json:"theme,omitempty"`
	IsPublic bool       `gorm:"not null;default:false;index;column:is_public" json:"is_public"`
	OwnerID  uint       `gorm:"not null;index;column:owner_id" json:"owner_id"`
	Owner    *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"-"`

	ImageURL1 string                      `gorm:"not null;column:image_url_1" json:"image_url_1"`
	ImageURL2 string                      `gorm:"not null;column:image_url_2" json:"image_url_2"`
	ImageURL3 string                      `gorm:"not null;column:image_url_3" json:"image_url_3"`
	Labels1   datatypes.JSONSlice[string] `gorm:"column:labels_1" json:"labels_1"`
	Labels2   datatypes.JSONSlice[string] `gorm:"column:labels_2" json:"labels_2"`
	Labels3   datatypes.JSONSlice[string] `gorm:"column:labels_3" json:"labels_3"`

	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

func (GeneratedContent) TableName() string { return "generated_content" }

func (g *GeneratedContent) ImageRefs() [3]string {
	return [3]string{g.ImageURL1, g.ImageURL2, g.ImageURL3}
}

func (g *GeneratedContent) LabelSets() [3][]string {
	return [3][]string{[]string(g.Labels1), []string(g.Labels2), []string(g.Labels3)}
}

func (g *GeneratedContent) SetProvenance(refs [3]string, labels [3][]string) {
	g.ImageURL1, g.ImageURL2, g.ImageURL3 = refs[0], refs[1], refs[2]
	g.Labels1 = nonNil(labels[0])
	g.Labels2 = nonNil(labels[1])
	g.Labels3 = nonNil(labels[2])
}

func (g *GeneratedContent) IsStory() bool { return g.Kind == KindStory }

func nonNil(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return datatypes.JSONSlice[string](out)
}
