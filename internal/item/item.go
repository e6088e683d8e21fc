// Package item gives typed access to the blog-part records loaded by
// pkg/itemload: decoding, required-field checks, URL clean-up, filtering and
// embed tag rendering.
package item

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// ButtonStyles lists the accepted values of Item.BtnStyle.
var ButtonStyles = []string{"__one", "__two", "__three", "__four", "__five"}

// Item is the typed view of a blog-part card. It covers the fields the
// tooling understands; documents are written back with NormalizeDocument so
// that keys outside this set survive.
type Item struct {
	Title    string `json:"title"`
	ImgURL   string `json:"imgUrl"`
	ImgWidth int    `json:"imgWidth,omitempty"`
	AURL     string `json:"aUrl"`
	YURL     string `json:"yUrl"`
	RURL     string `json:"rUrl"`
	BtnStyle string `json:"btnStyle,omitempty"`
	Desc     string `json:"desc"`
}

// Template returns the defaults for a new item.
func Template() Item {
	return Item{
		ImgWidth: 200,
		BtnStyle: "__three",
	}
}

// Decode reads the item held by rec. Records carrying an ErrorSentinel
// decode to the zero Item and an error naming the failure. Fields of an
// unexpected type read as empty; imgWidth may be a number or a numeric
// string.
func Decode(rec itemload.ItemRecord) (Item, error) {
	if reason := rec.Err(); reason != "" {
		return Item{}, fmt.Errorf("item %s: %s", rec.File, reason)
	}
	fields, err := decodeObject(rec.Data)
	if err != nil {
		return Item{}, fmt.Errorf("item %s: decode: %w", rec.File, err)
	}
	return Item{
		Title:    stringField(fields, "title"),
		ImgURL:   stringField(fields, "imgUrl"),
		ImgWidth: intField(fields, "imgWidth"),
		AURL:     stringField(fields, "aUrl"),
		YURL:     stringField(fields, "yUrl"),
		RURL:     stringField(fields, "rUrl"),
		BtnStyle: stringField(fields, "btnStyle"),
		Desc:     stringField(fields, "desc"),
	}, nil
}

// Validate returns one message per rule the item breaks, or nil.
func (it Item) Validate() []string {
	var errs []string
	if it.Title == "" {
		errs = append(errs, "title is required")
	}
	if it.ImgURL == "" {
		errs = append(errs, "imgUrl is required")
	}
	if it.AURL == "" {
		errs = append(errs, "aUrl is required")
	}
	if it.BtnStyle != "" && !slices.Contains(ButtonStyles, it.BtnStyle) {
		errs = append(errs, fmt.Sprintf("btnStyle %q is not one of %s", it.BtnStyle, strings.Join(ButtonStyles, ", ")))
	}
	return errs
}

// BrandKey is the first word of the title, or "(none)".
func (it Item) BrandKey() string {
	fields := strings.Fields(it.Title)
	if len(fields) == 0 {
		return NoBrand
	}
	return fields[0]
}

// NoBrand is the brand key of items without a title.
const NoBrand = "(none)"
