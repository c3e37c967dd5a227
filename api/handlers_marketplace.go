package api

import (
	"fmt"
	"net/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

func (s *Server) handleGetParams(c *gin.Context) {
	var resp ParamsResponse
	_ = s.app.Query(func(ctx sdk.Context) error {
		params := s.app.MarketplaceKeeper.GetParams(ctx)
		resp = ParamsResponse{
			Fee:                params.Fee,
			MinResponseTimeout: params.MinResponseTimeout,
			MaxResponseTimeout: params.MaxResponseTimeout,
		}
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetStats(c *gin.Context) {
	var resp StatsResponse
	_ = s.app.Query(func(ctx sdk.Context) error {
		resp = StatsResponse{
			NumTotalRequests: s.app.MarketplaceKeeper.NumTotalRequests(ctx),
			MechNonce:        s.app.MarketplaceKeeper.GetMechNonce(ctx),
			BlockHeight:      ctx.BlockHeight(),
			BlockTime:        ctx.BlockTime().Unix(),
		}
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetRequest(c *gin.Context) {
	id, ok := bindRequestID(c)
	if !ok {
		return
	}

	var resp RequestResponse
	err := s.app.Query(func(ctx sdk.Context) error {
		req, found := s.app.MarketplaceKeeper.GetRequest(ctx, id)
		if !found {
			return mptypes.ErrRequestIdNotFound.Wrapf("request %s", id)
		}
		resp = RequestResponse{
			Request: req,
			Status:  req.Status(ctx.BlockTime()).String(),
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListMechs(c *gin.Context) {
	limit := ValidateLimit(c.Query("limit"), DefaultListLimit, MaxListLimit)

	resp := MechsResponse{Mechs: []mptypes.Mech{}}
	_ = s.app.Query(func(ctx sdk.Context) error {
		s.app.MarketplaceKeeper.IterateMechs(ctx, func(m mptypes.Mech) bool {
			resp.Mechs = append(resp.Mechs, m)
			return len(resp.Mechs) >= limit
		})
		return nil
	})
	resp.Total = len(resp.Mechs)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetMech(c *gin.Context) {
	addrs, ok := bindAddresses(c, "address")
	if !ok {
		return
	}
	mech := addrs[0]

	var resp MechResponse
	err := s.app.Query(func(ctx sdk.Context) error {
		m, found := s.app.MarketplaceKeeper.GetMech(ctx, mech)
		if !found {
			return mptypes.ErrUnknownMech.Wrapf("mech %s", mech)
		}
		serviceOwner, err := s.app.MarketplaceKeeper.MechOperator(ctx, mech)
		if err != nil {
			return err
		}
		resp = MechResponse{
			Mech:            m,
			Operator:        serviceOwner.String(),
			NumUndelivered:  s.app.MarketplaceKeeper.NumUndeliveredRequests(ctx, mech),
			RequestCount:    s.app.MarketplaceKeeper.MapMechRequestCounts(ctx, mech),
			DeliveryCount:   s.app.MarketplaceKeeper.MapMechDeliveryCounts(ctx, mech),
			ServiceDelivery: s.app.MarketplaceKeeper.MapMechServiceDeliveryCounts(ctx, serviceOwner),
			Karma:           s.app.KarmaKeeper.GetMechKarma(ctx, mech),
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetUndelivered(c *gin.Context) {
	addrs, ok := bindAddresses(c, "address")
	if !ok {
		return
	}
	mech := addrs[0]

	var verrs ValidationErrors
	size, err := ParseUint(c.Query("size"), 0)
	if err != nil {
		verrs.Add("size", err.Error())
	} else if size > MaxListLimit {
		verrs.Add("size", fmt.Sprintf("must not exceed %d", MaxListLimit))
	}
	offset, err := ParseUint(c.Query("offset"), 0)
	if err != nil {
		verrs.Add("offset", err.Error())
	}
	if verrs.HasErrors() {
		badRequest(c, &verrs)
		return
	}

	resp := UndeliveredResponse{Mech: mech.String()}
	err = s.app.Query(func(ctx sdk.Context) error {
		if !s.app.MarketplaceKeeper.HasMech(ctx, mech) {
			return mptypes.ErrUnknownMech.Wrapf("mech %s", mech)
		}
		resp.Total = s.app.MarketplaceKeeper.NumUndeliveredRequests(ctx, mech)
		// without an explicit size, page through what is left after offset
		if size == 0 && offset <= resp.Total {
			size = min(uint64(DefaultListLimit), resp.Total-offset)
			if size == 0 {
				resp.RequestIDs = []mptypes.RequestID{}
				return nil
			}
		}
		ids, err := s.app.MarketplaceKeeper.GetUndeliveredRequestIds(ctx, mech, size, offset)
		if err != nil {
			return err
		}
		resp.RequestIDs = ids
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if resp.RequestIDs == nil {
		resp.RequestIDs = []mptypes.RequestID{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetRequester(c *gin.Context) {
	addrs, ok := bindAddresses(c, "address")
	if !ok {
		return
	}
	requester := addrs[0]

	resp := RequesterResponse{Address: requester.String()}
	_ = s.app.Query(func(ctx sdk.Context) error {
		resp.Nonce = s.app.MarketplaceKeeper.GetNonce(ctx, requester)
		resp.RequestCount = s.app.MarketplaceKeeper.MapRequestCounts(ctx, requester)
		resp.DeliveryCount = s.app.MarketplaceKeeper.MapDeliveryCounts(ctx, requester)
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetMechKarma(c *gin.Context) {
	addrs, ok := bindAddresses(c, "address")
	if !ok {
		return
	}

	resp := KarmaResponse{Mech: addrs[0].String()}
	_ = s.app.Query(func(ctx sdk.Context) error {
		resp.Karma = s.app.KarmaKeeper.GetMechKarma(ctx, addrs[0])
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetRequesterMechKarma(c *gin.Context) {
	addrs, ok := bindAddresses(c, "requester", "mech")
	if !ok {
		return
	}
	requester, mech := addrs[0], addrs[1]

	resp := KarmaResponse{Mech: mech.String(), Requester: requester.String()}
	_ = s.app.Query(func(ctx sdk.Context) error {
		resp.Karma = s.app.KarmaKeeper.GetRequesterMechKarma(ctx, requester, mech)
		return nil
	})
	c.JSON(http.StatusOK, resp)
}
