package api

import (
	"net/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
)

func (s *Server) handleListTrackers(c *gin.Context) {
	resp := TrackersResponse{Trackers: make([]TrackerResponse, 0, len(bttypes.AllVariants))}
	_ = s.app.Query(func(ctx sdk.Context) error {
		for _, v := range bttypes.AllVariants {
			tracker := s.app.Tracker(v)
			pt := s.app.PaymentType(v)
			bound, found := s.app.MarketplaceKeeper.GetPaymentTypeBalanceTracker(ctx, pt)

			resp.Trackers = append(resp.Trackers, TrackerResponse{
				Variant:       v.String(),
				Name:          tracker.Name(),
				Address:       tracker.Address().String(),
				PaymentType:   pt,
				Bound:         found && bound.Equals(tracker.Address()),
				CollectedFees: tracker.GetCollectedFees(ctx),
				Reserved:      tracker.GetReserved(ctx),
				Liabilities:   tracker.Liabilities(ctx),
			})
		}
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetTrackerMechBalance(c *gin.Context) {
	v, ok := bindVariant(c)
	if !ok {
		return
	}
	addrs, ok := bindAddresses(c, "address")
	if !ok {
		return
	}

	resp := BalanceResponse{Variant: v.String(), Address: addrs[0].String()}
	_ = s.app.Query(func(ctx sdk.Context) error {
		resp.Balance = s.app.Tracker(v).GetMechBalance(ctx, addrs[0])
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetTrackerRequesterBalance(c *gin.Context) {
	v, ok := bindVariant(c)
	if !ok {
		return
	}
	addrs, ok := bindAddresses(c, "address")
	if !ok {
		return
	}

	resp := BalanceResponse{Variant: v.String(), Address: addrs[0].String()}
	_ = s.app.Query(func(ctx sdk.Context) error {
		resp.Balance = s.app.Tracker(v).GetRequesterBalance(ctx, addrs[0])
		return nil
	})
	c.JSON(http.StatusOK, resp)
}
