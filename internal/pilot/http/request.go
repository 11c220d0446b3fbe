package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 4 << 20

// todoPayload is the JSON form of a todo write. CustomDate stays raw so an
// explicit null can be told apart from an absent field.
type todoPayload struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	Completed   *bool           `json:"completed"`
	CustomDate  json.RawMessage `json:"customDate"`
}

// decodeTodoInput reads a todo write from JSON or multipart/form-data.
// Files are only accepted in multipart bodies, under "file" or "files".
func decodeTodoInput(w http.ResponseWriter, r *http.Request, maxUpload int64) (service.TodoInput, error) {
	if httpx.IsMultipart(r) {
		return decodeMultipartTodo(w, r, maxUpload)
	}

	var p todoPayload
	if err := httpx.DecodeJSON(w, r, &p); err != nil {
		return service.TodoInput{}, err
	}

	in := service.TodoInput{
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		Completed:   p.Completed,
	}
	if len(p.CustomDate) > 0 {
		raw := "null"
		if string(p.CustomDate) != "null" {
			if err := json.Unmarshal(p.CustomDate, &raw); err != nil {
				return service.TodoInput{}, &service.ValidationError{Message: "Invalid customDate format"}
			}
		}
		date, err := service.ParseDate(raw)
		if err != nil {
			return service.TodoInput{}, err
		}
		in.CustomDate = date
	}
	return in, nil
}

func decodeMultipartTodo(w http.ResponseWriter, r *http.Request, maxUpload int64) (service.TodoInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.TodoInput{}, err
		}
		return service.TodoInput{}, &service.ValidationError{Message: "Invalid multipart form"}
	}
	form := r.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	in := service.TodoInput{
		Title:       formField(form, "title"),
		Description: formField(form, "description"),
		Priority:    formField(form, "priority"),
	}

	if v := formField(form, "completed"); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return service.TodoInput{}, &service.ValidationError{Message: "completed must be true or false"}
		}
		in.Completed = &b
	}
	if v := formField(form, "customDate"); v != nil {
		date, err := service.ParseDate(*v)
		if err != nil {
			return service.TodoInput{}, err
		}
		in.CustomDate = date
	}

	headers := append(form.File["file"], form.File["files"]...)
	for _, fh := range headers {
		up, err := readUpload(fh)
		if err != nil {
			return service.TodoInput{}, err
		}
		in.Files = append(in.Files, up)
	}
	return in, nil
}

func formField(form *multipart.Form, name string) *string {
	vs, ok := form.Value[name]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return service.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
