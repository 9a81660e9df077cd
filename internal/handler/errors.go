package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"starcg-market-api/internal/market"
	"starcg-market-api/internal/repository"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/apierror"
	"starcg-market-api/pkg/response"
)

// toAPIError classifies err into the public error taxonomy.
func toAPIError(err error) *apierror.Error {
	var (
		apiErr      *apierror.Error
		timeoutErr  *market.TimeoutError
		networkErr  *market.NetworkError
		statusErr   *market.UpstreamStatusError
		invalidResp *market.InvalidResponseError
		storageErr  *repository.StorageError
		validation  *service.ValidationError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &validation):
		return apierror.InvalidInput(validation.Error(), apierror.FieldError{
			Field:   validation.Field,
			Message: validation.Message,
		})
	case errors.As(err, &timeoutErr):
		return apierror.Timeout(err.Error())
	case errors.As(err, &networkErr):
		return apierror.Network(err.Error())
	case errors.As(err, &statusErr):
		return apierror.Upstream(err.Error())
	case errors.As(err, &invalidResp):
		return apierror.InvalidResponse(err.Error())
	case errors.As(err, &storageErr):
		return apierror.Storage(err.Error())
	case errors.Is(err, service.ErrNotAvailable):
		return apierror.NotAvailable(err.Error())
	default:
		return apierror.Unknown(err.Error())
	}
}

func writeError(w http.ResponseWriter, err error) {
	response.Error(w, toAPIError(err))
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierror.InvalidInput("invalid JSON body: " + err.Error())
	}
	return nil
}
