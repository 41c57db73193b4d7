package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Edelbertschen/taskfuchs-sub005/server/auth"
	apierrors "github.com/Edelbertschen/taskfuchs-sub005/server/internal/errors"
	"github.com/Edelbertschen/taskfuchs-sub005/server/service/viewstate"
)

type viewStateResponse struct {
	State json.RawMessage `json:"state"`
}

func (s *APIV1Service) GetViewState(c echo.Context) error {
	ctx := c.Request().Context()
	doc, err := s.ViewStateService.Get(ctx, auth.GetUserID(ctx))
	if err != nil {
		return apierrors.Internal("failed to get view state", err)
	}
	return writeViewState(c, doc)
}

func (s *APIV1Service) ReplaceViewState(c echo.Context) error {
	doc, err := readDocument(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	saved, err := s.ViewStateService.Replace(ctx, auth.GetUserID(ctx), doc)
	if err != nil {
		return apierrors.Internal("failed to save view state", err)
	}
	return writeViewState(c, saved)
}

func (s *APIV1Service) PatchViewState(c echo.Context) error {
	patch, err := readDocument(c)
	if err != nil {
		return err
	}
	if patch.GetStructValue() == nil {
		return apierrors.InvalidArgument("patch must be a JSON object", nil)
	}
	ctx := c.Request().Context()
	merged, err := s.ViewStateService.MergePatch(ctx, auth.GetUserID(ctx), patch)
	if err != nil {
		return apierrors.Internal("failed to patch view state", err)
	}
	return writeViewState(c, merged)
}

// readDocument decodes the request body as a JSON document of any shape.
func readDocument(c echo.Context) (*structpb.Value, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			// Body limit exceeded while streaming.
			return nil, httpErr
		}
		return nil, apierrors.InvalidArgument("failed to read request body", err)
	}
	doc, err := viewstate.ParseDocument(body)
	if err != nil {
		return nil, apierrors.InvalidArgument("request body is not valid JSON", err)
	}
	return doc, nil
}

func writeViewState(c echo.Context, doc *structpb.Value) error {
	data, err := viewstate.MarshalDocument(doc)
	if err != nil {
		return apierrors.Internal("failed to encode view state", err)
	}
	return c.JSON(http.StatusOK, viewStateResponse{State: data})
}
