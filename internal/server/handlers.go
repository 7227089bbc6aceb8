package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/klytics/sheetlens/internal/analysis"
	"github.com/klytics/sheetlens/internal/metrics"
)

type handlers struct {
	svc *analysis.Service
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// fail writes err as a JSON error body. Request errors keep their status and
// message, everything else is a 500 carrying the error text.
func fail(c echo.Context, err error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return c.JSON(reqErr.StatusCode, errorBody(reqErr.Err))
	}
	logger(c).Errorw("request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, errorBody(err))
}

// upload reads the multipart "file" field into memory.
func upload(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrMissingFile
		}
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		// not multipart at all
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrMissingFile
		}
		return nil, ErrBadUpload
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	metrics.UploadBytes.Observe(float64(len(data)))
	logger(c).Debugw("upload received", "filename", fh.Filename, "bytes", len(data))
	return data, nil
}

func (h *handlers) analyze(c echo.Context) error {
	data, err := upload(c)
	if err != nil {
		return uploadFailure(c, err)
	}

	res, err := h.svc.Analyze(c.Request().Context(), data)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"analysis": res.Text})
}

func (h *handlers) ask(c echo.Context) error {
	data, err := upload(c)
	if err != nil {
		return uploadFailure(c, err)
	}

	question := strings.TrimSpace(c.FormValue("question"))
	if question == "" {
		return fail(c, ErrMissingQuestion)
	}

	res, err := h.svc.Ask(c.Request().Context(), data, question)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyQuestion) {
			return fail(c, ErrMissingQuestion)
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": res.Text})
}

func uploadFailure(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fail(c, err)
}

func index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}
