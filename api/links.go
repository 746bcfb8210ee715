package api

import (
	"maps"
	"net/url"
	"strconv"

	"github.com/Alp4ka/cursorpaging"
	"github.com/Alp4ka/cursorpaging/serializer"
)

const (
	RelSelf  = "self"
	RelNext  = "next"
	RelFirst = "first"
)

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// PageLinks builds links addressing pages of one endpoint. The serialized
// page request is passed as the "cursor" query parameter.
type PageLinks struct {
	serializer *serializer.RequestSerializer
	path       string
	params     url.Values
}

func NewPageLinks(s *serializer.RequestSerializer, path string) PageLinks {
	return PageLinks{serializer: s, path: path, params: url.Values{}}
}

// WithParam returns a copy adding a query parameter to every link.
func (l PageLinks) WithParam(key, value string) PageLinks {
	l.params = cloneParams(l.params)
	l.params.Set(key, value)

	return l
}

// WithPageSize is WithParam("pageSize", size), skipped for size <= 0.
func (l PageLinks) WithPageSize(size int) PageLinks {
	if size <= 0 {
		return l
	}

	return l.WithParam("pageSize", strconv.Itoa(size))
}

func (l PageLinks) Link(rel string, req *cursorpaging.PageRequest) (Link, error) {
	cursor, err := l.serializer.ToBase64(req)
	if err != nil {
		return Link{}, err
	}

	params := cloneParams(l.params)
	params.Set("cursor", cursor.String())

	return Link{Rel: rel, Href: l.path + "?" + params.Encode()}, nil
}

func cloneParams(v url.Values) url.Values {
	ret := url.Values{}
	maps.Copy(ret, v)

	return ret
}

func (l PageLinks) Self(req *cursorpaging.PageRequest) (Link, error) {
	return l.Link(RelSelf, req)
}

// Next returns nil if there is no next page.
func (l PageLinks) Next(req *cursorpaging.PageRequest) (*Link, error) {
	if req == nil {
		return nil, nil
	}

	link, err := l.Link(RelNext, req)
	if err != nil {
		return nil, err
	}

	return &link, nil
}

// Links returns the self link of page and, if present, the next link.
func Links[E any](l PageLinks, page *cursorpaging.Page[E]) ([]Link, error) {
	self, err := l.Self(page.Self)
	if err != nil {
		return nil, err
	}

	next, err := l.Next(page.Next)
	if err != nil {
		return nil, err
	}

	if next == nil {
		return []Link{self}, nil
	}

	return []Link{self, *next}, nil
}

// CollectionModel is the JSON envelope of a page.
type CollectionModel[T any] struct {
	Content       []T    `json:"content"`
	Links         []Link `json:"links"`
	TotalElements *int64 `json:"totalElements,omitempty"`
}

func NewCollectionModel[T any](content []T, links ...Link) CollectionModel[T] {
	if content == nil {
		content = []T{}
	}

	return CollectionModel[T]{Content: content, Links: links}
}

// PageModel maps the content of page with fn and attaches its links and
// total count.
func PageModel[E, T any](l PageLinks, page *cursorpaging.Page[E], fn func(E) T) (CollectionModel[T], error) {
	links, err := Links(l, page)
	if err != nil {
		return CollectionModel[T]{}, err
	}

	model := NewCollectionModel(cursorpaging.MapContent(page, fn).Content, links...)
	if count, ok := page.TotalCount(); ok {
		model.TotalElements = &count
	}

	return model, nil
}

// RepresentationModel is the JSON envelope of a single resource.
type RepresentationModel struct {
	Content any    `json:"content,omitempty"`
	Links   []Link `json:"links"`
}

func NewRepresentationModel(content any, links ...Link) RepresentationModel {
	if links == nil {
		links = []Link{}
	}

	return RepresentationModel{Content: content, Links: links}
}
