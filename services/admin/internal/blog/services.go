// Package blog declares the blog API endpoints and the edit-target slice.
package blog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"blog-admin/pkg/logger"
	"blog-admin/services/admin/internal/apperr"
	"blog-admin/services/admin/internal/entity"
	"blog-admin/services/admin/internal/query"
)

const (
	ReducerPath = "blogApi"
	TagPosts    = "Posts"
)

func listTag() query.Tag {
	return query.Tag{Type: TagPosts, ID: query.ListID}
}

func postTag(id string) query.Tag {
	return query.Tag{Type: TagPosts, ID: id}
}

type Service struct {
	API *query.API

	GetPosts    *query.QueryEndpoint[query.Void, []entity.Post]
	GetPostByID *query.QueryEndpoint[string, entity.Post]
	AddPost     *query.MutationEndpoint[entity.PostDraft, entity.Post]
	UpdatePost  *query.MutationEndpoint[entity.Post, entity.Post]
	DeletePost  *query.MutationEndpoint[string, entity.Post]
	UploadImage *query.MutationEndpoint[entity.ImageUpload, entity.ImageURL]
}

func NewService(baseQuery query.BaseQuery, log *logger.Logger) *Service {
	api := query.New(ReducerPath, baseQuery, log)

	return &Service{
		API: api,

		GetPosts: query.DefineQuery(api, "getPosts", query.QueryDefinition[query.Void, []entity.Post]{
			Query: func(query.Void) (query.FetchArgs, error) {
				return query.FetchArgs{URL: "posts"}, nil
			},
			ProvidesTags: func(posts []entity.Post, err error, _ query.Void) []query.Tag {
				tags := []query.Tag{listTag()}
				if err != nil {
					return tags
				}
				for _, p := range posts {
					tags = append(tags, postTag(p.ID))
				}
				return tags
			},
		}),

		GetPostByID: query.DefineQuery(api, "getPostById", query.QueryDefinition[string, entity.Post]{
			Query: func(id string) (query.FetchArgs, error) {
				if id == "" {
					return query.FetchArgs{}, fmt.Errorf("post id is required")
				}
				return query.FetchArgs{URL: "posts/" + url.PathEscape(id)}, nil
			},
			ProvidesTags: func(_ entity.Post, _ error, id string) []query.Tag {
				return []query.Tag{postTag(id)}
			},
		}),

		AddPost: query.DefineMutation(api, "addPost", query.MutationDefinition[entity.PostDraft, entity.Post]{
			Query: func(draft entity.PostDraft) (query.FetchArgs, error) {
				return guard(func() (query.FetchArgs, error) {
					body, err := json.Marshal(draft)
					if err != nil {
						return query.FetchArgs{}, err
					}
					return query.FetchArgs{URL: "posts", Method: http.MethodPost, Body: json.RawMessage(body)}, nil
				})
			},
			InvalidatesTags: func(_ entity.Post, err error, _ entity.PostDraft) []query.Tag {
				if err != nil {
					return nil
				}
				return []query.Tag{listTag()}
			},
		}),

		UpdatePost: query.DefineMutation(api, "updatePost", query.MutationDefinition[entity.Post, entity.Post]{
			Query: func(post entity.Post) (query.FetchArgs, error) {
				if post.ID == "" {
					return query.FetchArgs{}, fmt.Errorf("post id is required")
				}
				return query.FetchArgs{
					URL:    "posts/" + url.PathEscape(post.ID),
					Method: http.MethodPut,
					Body:   post.Draft(),
				}, nil
			},
			InvalidatesTags: func(_ entity.Post, err error, post entity.Post) []query.Tag {
				if err != nil {
					return nil
				}
				return []query.Tag{postTag(post.ID)}
			},
		}),

		DeletePost: query.DefineMutation(api, "deletePost", query.MutationDefinition[string, entity.Post]{
			Query: func(id string) (query.FetchArgs, error) {
				if id == "" {
					return query.FetchArgs{}, fmt.Errorf("post id is required")
				}
				return query.FetchArgs{URL: "posts/" + url.PathEscape(id), Method: http.MethodDelete}, nil
			},
			InvalidatesTags: func(_ entity.Post, err error, id string) []query.Tag {
				if err != nil {
					return nil
				}
				return []query.Tag{postTag(id)}
			},
		}),

		UploadImage: query.DefineMutation(api, "uploadImage", query.MutationDefinition[entity.ImageUpload, entity.ImageURL]{
			Query: func(img entity.ImageUpload) (query.FetchArgs, error) {
				body, contentType, err := multipartImage(img)
				if err != nil {
					return query.FetchArgs{}, apperr.NewCustomError(err.Error())
				}
				return query.FetchArgs{URL: "images", Method: http.MethodPost, Body: body, ContentType: contentType}, nil
			},
		}),
	}
}

// guard turns any failure or panic while building a request into a
// CustomError so it is reported apart from server rejections.
func guard(build func() (query.FetchArgs, error)) (args query.FetchArgs, err error) {
	defer func() {
		if r := recover(); r != nil {
			args = query.FetchArgs{}
			err = apperr.NewCustomError(fmt.Sprint(r))
		}
	}()

	args, err = build()
	if err != nil {
		return query.FetchArgs{}, apperr.NewCustomError(err.Error())
	}
	return args, nil
}

func multipartImage(img entity.ImageUpload) ([]byte, string, error) {
	if img.Filename == "" {
		return nil, "", fmt.Errorf("image file name is required")
	}
	if len(img.Content) == 0 {
		return nil, "", fmt.Errorf("image %s is empty", img.Filename)
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Content)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, img.Filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
