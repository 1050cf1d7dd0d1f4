package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/runner"
	"github.com/lukman83/rakurank/internal/store"
)

func registerTools(s *server.MCPServer, st *store.Store, run *runner.Runner) {
	// check_rank
	rankTool := mcp.NewTool("check_rank",
		mcp.WithDescription("Check the organic Ichiba search rank of a shop for a keyword"),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Search phrase"),
		),
		mcp.WithString("shop_id",
			mcp.Required(),
			mcp.Description("Target shop id"),
		),
		mcp.WithString("item_code",
			mcp.Description("Target listing item code"),
		),
	)
	s.AddTool(rankTool, handleCheckRank(st, run))

	// check_ad_rank
	adTool := mcp.NewTool("check_ad_rank",
		mcp.WithDescription("Check the sponsored (RPP) placement rank of a shop for a keyword"),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Search phrase"),
		),
		mcp.WithString("shop_id",
			mcp.Required(),
			mcp.Description("Target shop id"),
		),
	)
	s.AddTool(adTool, handleCheckAdRank(st, run))

	// rank_history
	historyTool := mcp.NewTool("rank_history",
		mcp.WithDescription("Show recent rank checks for a tracked keyword"),
		mcp.WithNumber("keyword_id",
			mcp.Required(),
			mcp.Description("Keyword id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Entries to return (default: 30)"),
		),
	)
	s.AddTool(historyTool, handleRankHistory(st))

	// list_keywords
	listTool := mcp.NewTool("list_keywords",
		mcp.WithDescription("List tracked keywords"),
		mcp.WithString("variant",
			mcp.Description("Tracking variant: organic or rpp (default: organic)"),
		),
	)
	s.AddTool(listTool, handleListKeywords(st))
}

func handleCheckRank(st *store.Store, run *runner.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kw, errResult := upsertKeyword(ctx, st, request, models.VariantOrganic)
		if errResult != nil {
			return errResult, nil
		}

		result, err := run.CheckOrganic(ctx, kw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rank check error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCheckAdRank(st *store.Store, run *runner.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kw, errResult := upsertKeyword(ctx, st, request, models.VariantRPP)
		if errResult != nil {
			return errResult, nil
		}

		result, err := run.CheckSponsored(ctx, kw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ad rank check error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleRankHistory(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keywordID := request.GetInt("keyword_id", 0)
		if keywordID == 0 {
			return mcp.NewToolResultError("keyword_id is required"), nil
		}
		limit := request.GetInt("limit", 30)

		kw, err := st.GetKeyword(ctx, int64(keywordID))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("keyword error: %v", err)), nil
		}

		var payload any
		if kw.Variant == models.VariantRPP {
			payload, err = st.AdHistory(ctx, kw.ID, limit)
		} else {
			payload, err = st.RankHistory(ctx, kw.ID, limit)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("history error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleListKeywords(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		variant := models.VariantOrganic
		if request.GetString("variant", "organic") == "rpp" {
			variant = models.VariantRPP
		}

		keywords, err := st.ListKeywords(ctx, variant, false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
		}
		data, _ := json.MarshalIndent(keywords, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

// upsertKeyword registers the requested keyword, or reuses the stored row
// when the phrase is already tracked for the shop.
func upsertKeyword(ctx context.Context, st *store.Store, request mcp.CallToolRequest, variant models.Variant) (models.Keyword, *mcp.CallToolResult) {
	phrase := request.GetString("keyword", "")
	if phrase == "" {
		return models.Keyword{}, mcp.NewToolResultError("keyword is required")
	}
	shopID := request.GetString("shop_id", "")
	if shopID == "" {
		return models.Keyword{}, mcp.NewToolResultError("shop_id is required")
	}

	kw, err := st.AddKeyword(ctx, models.Keyword{
		Phrase:   phrase,
		ShopID:   shopID,
		ItemCode: request.GetString("item_code", ""),
		Variant:  variant,
		Active:   true,
	})
	if err == nil {
		return kw, nil
	}

	existing, listErr := st.ListKeywords(ctx, variant, false)
	if listErr == nil {
		for _, candidate := range existing {
			if candidate.Phrase == phrase && candidate.ShopID == shopID {
				return candidate, nil
			}
		}
	}
	return models.Keyword{}, mcp.NewToolResultError(fmt.Sprintf("keyword error: %v", err))
}
