package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/store"
)

var keywordCmd = &cobra.Command{
	Use:   "keyword",
	Short: "Manage tracked keywords",
}

var keywordAddCmd = &cobra.Command{
	Use:   "add [phrase]",
	Short: "Register a phrase for rank tracking",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordAdd,
}

var keywordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked keywords",
	RunE:  runKeywordList,
}

var keywordRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Delete a keyword and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordRemove,
}

var keywordPauseCmd = &cobra.Command{
	Use:   "pause [id]",
	Short: "Pause tracking for a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(args[0], false) },
}

var keywordResumeCmd = &cobra.Command{
	Use:   "resume [id]",
	Short: "Resume tracking for a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(args[0], true) },
}

func init() {
	keywordAddCmd.Flags().String("shop", "", "Target shop id (required)")
	keywordAddCmd.Flags().String("item-code", "", "Target listing item code")
	keywordAddCmd.Flags().String("item-url", "", "Target listing URL")
	keywordAddCmd.Flags().String("variant", "organic", "Tracking variant: organic, rpp")
	keywordAddCmd.MarkFlagRequired("shop")

	keywordListCmd.Flags().String("variant", "organic", "Tracking variant: organic, rpp")
	keywordListCmd.Flags().Bool("all", false, "Include paused keywords")

	keywordCmd.AddCommand(keywordAddCmd, keywordListCmd, keywordRemoveCmd, keywordPauseCmd, keywordResumeCmd)
	rootCmd.AddCommand(keywordCmd)
}

func runKeywordAdd(cmd *cobra.Command, args []string) error {
	shop, _ := cmd.Flags().GetString("shop")
	itemCode, _ := cmd.Flags().GetString("item-code")
	itemURL, _ := cmd.Flags().GetString("item-url")
	variant, err := parseVariant(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	kw, err := st.AddKeyword(context.Background(), models.Keyword{
		Phrase:   args[0],
		ShopID:   shop,
		ItemCode: itemCode,
		ItemURL:  itemURL,
		Variant:  variant,
		Active:   true,
	})
	if err != nil {
		return fmt.Errorf("add keyword: %w", err)
	}
	fmt.Printf("Added keyword #%d: %q for shop %s (%s)\n", kw.ID, kw.Phrase, kw.ShopID, kw.Variant)
	return nil
}

func runKeywordList(cmd *cobra.Command, args []string) error {
	variant, err := parseVariant(cmd)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	keywords, err := st.ListKeywords(context.Background(), variant, !all)
	if err != nil {
		return err
	}
	printKeywordsTable(keywords)
	return nil
}

func runKeywordRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteKeyword(context.Background(), id); err != nil {
		return fmt.Errorf("remove keyword %d: %w", id, err)
	}
	fmt.Printf("Removed keyword #%d\n", id)
	return nil
}

func setActive(arg string, active bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SetKeywordActive(context.Background(), id, active); err != nil {
		return fmt.Errorf("update keyword %d: %w", id, err)
	}
	state := "paused"
	if active {
		state = "active"
	}
	fmt.Printf("Keyword #%d is now %s\n", id, state)
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid keyword id %q", arg)
	}
	return id, nil
}

func parseVariant(cmd *cobra.Command) (models.Variant, error) {
	raw, _ := cmd.Flags().GetString("variant")
	switch strings.ToLower(raw) {
	case "organic", "":
		return models.VariantOrganic, nil
	case "rpp", "ad", "sponsored":
		return models.VariantRPP, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want organic or rpp)", raw)
	}
}

// loadKeywordArg resolves a positional keyword-id argument against the store.
func loadKeywordArg(st *store.Store, arg string) (models.Keyword, error) {
	id, err := parseID(arg)
	if err != nil {
		return models.Keyword{}, err
	}
	kw, err := st.GetKeyword(context.Background(), id)
	if err != nil {
		return models.Keyword{}, fmt.Errorf("keyword %d: %w", id, err)
	}
	return kw, nil
}
