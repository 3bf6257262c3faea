package post

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxImageSize = 10 << 20

const (
	msgRequired     = "This field is required."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidForm  = "The submitted form could not be read."
	msgImageTooBig  = "The image may not exceed 10 MB."
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".webp": true, ".bmp": true,
}

// FieldErrors maps a form field name to its message. "__all__" holds
// errors not tied to one field.
type FieldErrors map[string]string

type Form struct {
	Text       string `form:"text" binding:"required"`
	Group      string `form:"group"`
	ImageClear bool   `form:"image-clear"`
}

type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

// image is a validated upload held in memory until it is stored.
type image struct {
	data        []byte
	ext         string
	contentType string
}

// bindForm binds and validates obj. Text fields are trimmed first so blank
// input fails "required".
func bindForm(c *gin.Context, obj interface{}, trim func()) FieldErrors {
	err := c.ShouldBind(obj)
	if err == nil {
		trim()
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return FieldErrors{}
	}
	return fieldErrors(err)
}

func bindPostForm(c *gin.Context) (*Form, FieldErrors) {
	var f Form
	errs := bindForm(c, &f, func() { f.Text = strings.TrimSpace(f.Text) })
	return &f, errs
}

func bindCommentForm(c *gin.Context) (*CommentForm, FieldErrors) {
	var f CommentForm
	errs := bindForm(c, &f, func() { f.Text = strings.TrimSpace(f.Text) })
	return &f, errs
}

func fieldErrors(err error) FieldErrors {
	errs := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["__all__"] = msgInvalidForm
		return errs
	}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs[name] = msgRequired
		default:
			errs[name] = fmt.Sprintf("Invalid value (%s).", fe.Tag())
		}
	}
	return errs
}

// readImage returns nil when no file was submitted.
func readImage(c *gin.Context) (*image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return validateImage(fh)
}

func validateImage(fh *multipart.FileHeader) (*image, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return nil, errors.New(msgInvalidImage)
	}
	if fh.Size > maxImageSize {
		return nil, errors.New(msgImageTooBig)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	contentType := http.DetectContentType(data)
	if len(data) == 0 || !strings.HasPrefix(contentType, "image/") {
		return nil, errors.New(msgInvalidImage)
	}
	return &image{data: data, ext: ext, contentType: contentType}, nil
}

func (i *image) reader() io.Reader {
	return bytes.NewReader(i.data)
}
