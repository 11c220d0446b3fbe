package pilotsdk

import (
	"bytes"
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	var out []Todo
	if err := c.doJSON(ctx, http.MethodGet, "/todos", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTodo sends JSON, or multipart/form-data when files are attached.
func (c *Client) CreateTodo(ctx context.Context, req TodoRequest, files ...Upload) (*Todo, error) {
	return c.sendTodo(ctx, http.MethodPost, "/todos", req, files, http.StatusCreated)
}

// UpdateTodo applies a partial update. Attached files replace the current
// ones.
func (c *Client) UpdateTodo(ctx context.Context, id string, req TodoRequest, files ...Upload) (*Todo, error) {
	return c.sendTodo(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), req, files, http.StatusOK)
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, http.StatusOK)
}

func (c *Client) sendTodo(
	ctx context.Context,
	method, path string,
	req TodoRequest,
	files []Upload,
	expectedStatus int,
) (*Todo, error) {
	var out Todo
	if len(files) == 0 {
		if err := c.doJSON(ctx, method, path, req, &out, expectedStatus); err != nil {
			return nil, err
		}
		return &out, nil
	}

	body, contentType, err := encodeMultipart(req, files)
	if err != nil {
		return nil, err
	}
	resp, err := c.doRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(resp, &out, expectedStatus); err != nil {
		return nil, err
	}
	return &out, nil
}

func encodeMultipart(req TodoRequest, files []Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]*string{
		"title":       req.Title,
		"description": req.Description,
		"priority":    req.Priority,
		"customDate":  req.CustomDate,
	}
	for name, v := range fields {
		if v == nil {
			continue
		}
		if err := mw.WriteField(name, *v); err != nil {
			return nil, "", err
		}
	}
	if req.Completed != nil {
		if err := mw.WriteField("completed", strconv.FormatBool(*req.Completed)); err != nil {
			return nil, "", err
		}
	}

	field := "file"
	if len(files) > 1 {
		field = "files"
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     field,
			"filename": f.Name,
		}))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
