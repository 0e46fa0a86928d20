package endpoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/kit/endpoint"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
)

type CrawlService interface {
	Start(ctx context.Context, req dto.CrawlRequest) (dto.CrawlRun, error)
	Get(id string) (dto.CrawlRun, error)
}

type CrawlEndpoint struct {
	StartCrawl endpoint.Endpoint
	GetCrawl   endpoint.Endpoint
}

func MakeCrawlEndpoint(service CrawlService) CrawlEndpoint {
	return CrawlEndpoint{
		StartCrawl: makeStartCrawlEndpoint(service),
		GetCrawl:   makeGetCrawlEndpoint(service),
	}
}

func makeStartCrawlEndpoint(service CrawlService) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.CrawlRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		run, err := service.Start(ctx, *request)
		if err != nil {
			return nil, fmt.Errorf("run service: %w", err)
		}

		return run, nil
	}
}

func makeGetCrawlEndpoint(service CrawlService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.GetCrawlRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		run, err := service.Get(request.ID)
		if err != nil {
			return nil, fmt.Errorf("run service: %w", err)
		}

		return run, nil
	}
}
