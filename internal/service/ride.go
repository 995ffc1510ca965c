package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/tymem/mem-agent/internal/router"
)

// carClass holds the fare model for one ride option.
type carClass struct {
	BasePrice float64
	PerKM     float64
	Note      string
}

// carClasses mirrors the upstream ride platform's offering. 快车 is the
// default when the user does not name a class.
var carClasses = map[string]carClass{
	"快车":  {BasePrice: 8, PerKM: 2.5, Note: "经济实惠"},
	"专车":  {BasePrice: 15, PerKM: 3.5, Note: "舒适体验"},
	"出租车": {BasePrice: 10, PerKM: 2.8, Note: "传统出行"},
}

const defaultCarClass = "快车"

// drivers is the simulated driver pool the booking stub matches against.
var drivers = []string{"王师傅", "李师傅", "张师傅", "刘师傅", "陈师傅"}

// RideService books rides through the Didi open platform. The upstream
// booking API is stubbed: fares and driver matching are computed locally
// with a deterministic distance estimate, but the request/response shape
// matches the real flow so the stub can be swapped for the live client.
type RideService struct {
	apiKey  string
	enabled bool
}

var _ router.Service = (*RideService)(nil)

// NewRideService creates the ride-hailing service. An empty API key leaves
// the service registered but unable to execute.
func NewRideService(apiKey string, enabled bool) *RideService {
	return &RideService{apiKey: apiKey, enabled: enabled}
}

func (s *RideService) Descriptor() router.Descriptor {
	return router.Descriptor{
		Name:         "didi_ride",
		Description:  "滴滴叫车服务，支持预约快车、专车、出租车",
		Capabilities: []string{"ride_hailing", "transport"},
		Keywords:     []string{"打车", "叫车", "滴滴", "用车", "快车", "专车", "出租车", "taxi", "ride"},
		Enabled:      s.enabled,
	}
}

func (s *RideService) Score(req *router.Request) float64 {
	d := s.Descriptor()
	return matchScore(req, d.Keywords, d.Capabilities)
}

// Execute books a ride to the destination slot. Missing destination is the
// caller's fault; a missing API key means the remote platform cannot be
// reached at all.
func (s *RideService) Execute(ctx context.Context, req *router.Request) (*router.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	destination := strings.TrimSpace(req.Arg("destination", ""))
	if destination == "" {
		return nil, router.Failf(router.KindInvalidArguments, "destination is required for ride booking")
	}
	if s.apiKey == "" {
		return nil, router.Failf(router.KindRemoteUnavailable, "ride platform API key is not configured")
	}

	origin := req.Arg("origin", "当前位置")
	className := req.Arg("car_type", defaultCarClass)
	class, ok := carClasses[className]
	if !ok {
		className, class = defaultCarClass, carClasses[defaultCarClass]
	}

	distanceKM := estimateDistanceKM(origin, destination)
	fare := class.BasePrice + class.PerKM*float64(distanceKM)
	driver := drivers[routeHash(origin+destination)%uint32(len(drivers))]
	orderID := uuid.NewString()

	text := fmt.Sprintf("🚗 已为您预约%s（%s）：%s → %s，预计 %d 公里，约 ¥%.1f，司机%s，订单号 %s",
		className, class.Note, origin, destination, distanceKM, fare, driver, orderID)
	return &router.Payload{
		Text: text,
		Data: map[string]any{
			"order_id":    orderID,
			"car_type":    className,
			"origin":      origin,
			"destination": destination,
			"distance_km": distanceKM,
			"fare":        fare,
			"driver":      driver,
		},
	}, nil
}

// estimateDistanceKM derives a stable pseudo-distance in 2..19 km from the
// route endpoints, so repeated bookings of the same route quote the same
// fare.
func estimateDistanceKM(origin, destination string) int {
	return 2 + int(routeHash(origin+"→"+destination)%18)
}

func routeHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
