// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/optimistic"
	"github.com/genra-app/genra/internal/client/thread"
)

var (
	bookmarkOn  bool
	bookmarkOff bool
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <book-id>",
	Short: "Toggle a book in your library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		saved, err := current.api.IsBookmarked(ctx, args[0])
		if err != nil {
			return err
		}
		bookmark := optimistic.NewBookmark(current.api, args[0], saved, optimistic.Options[bool]{})

		switch {
		case bookmarkOn:
			saved, err = bookmark.Set(ctx, true)
		case bookmarkOff:
			saved, err = bookmark.Set(ctx, false)
		default:
			saved, err = bookmark.Toggle(ctx)
		}
		if err != nil {
			return err
		}

		if saved {
			fmt.Println("Saved to your library")
		} else {
			fmt.Println("Removed from your library")
		}
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <book-id> <stars>",
	Short: "Rate a book from 1 to 5 stars; 0 clears your rating",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stars, err := strconv.Atoi(args[1])
		if err != nil || stars < 0 || stars > 5 {
			return fmt.Errorf("stars must be a number from 0 to 5")
		}
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		state, err := current.api.Rating(ctx, args[0])
		if err != nil {
			return err
		}
		rating := optimistic.NewRating(current.api, *state, optimistic.Options[gateway.RatingState]{})

		updated, err := rating.Rate(ctx, stars)
		if err != nil {
			return err
		}
		fmt.Printf("Your rating: %d★ · average %.2f from %d readers\n", updated.Stars, updated.Rating, updated.RatingCount)
		return nil
	},
}

var (
	commentsPages  int
	commentsExpand bool
)

var commentsCmd = &cobra.Command{
	Use:   "comments <book-id>",
	Short: "Show the discussion of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := current.api.Comments(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		userID := ""
		if tokens := current.api.Tokens().Session(); tokens != nil && tokens.User != nil {
			userID = tokens.User.ID
		}

		pager := thread.NewPager(thread.Assemble(comments), thread.DefaultPageSize)
		for range commentsPages - 1 {
			pager.More()
		}

		for _, discussion := range pager.Visible() {
			if commentsExpand {
				pager.Expand(discussion.Root.ID)
			}
		}
		for _, discussion := range pager.Visible() {
			printComment("", discussion.Root, userID)
			for _, reply := range discussion.Replies {
				printComment("    ", reply, userID)
			}
			if hidden := pager.HiddenReplies(discussion.Root.ID); hidden > 0 {
				fmt.Printf("    … %d more replies (--expand)\n", hidden)
			}
		}

		if pager.Total() == 0 {
			fmt.Println("No comments yet")
		} else if pager.HasMore() {
			fmt.Printf("… more threads (--pages %d)\n", commentsPages+1)
		}
		return nil
	},
}

func printComment(indent string, comment gateway.Comment, userID string) {
	mine := ""
	if vote := thread.VoteOf(comment, userID); userID != "" && vote != gateway.VoteNone {
		mine = " · you: " + vote
	}
	fmt.Printf("%s@%s  %s  (+%d/-%d%s)  [%s]\n", indent, comment.Author.Username,
		comment.CreatedAt.Format("2006-01-02 15:04"),
		thread.Count(comment, gateway.VoteLike), thread.Count(comment, gateway.VoteDislike), mine, comment.ID)
	fmt.Printf("%s  %s\n", indent, comment.Text)
}

var commentReplyTo string

var commentCmd = &cobra.Command{
	Use:   "comment <book-id> <text...>",
	Short: "Post a comment or a reply",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		var parentID *string
		if commentReplyTo != "" {
			parentID = &commentReplyTo
		}
		comment, err := current.api.PostComment(ctx, args[0], strings.Join(args[1:], " "), parentID)
		if err != nil {
			return err
		}
		fmt.Printf("Posted %s\n", comment.ID)
		return nil
	},
}

var voteBook string

var voteCmd = &cobra.Command{
	Use:       "vote <comment-id> like|dislike|none --book <book-id>",
	Short:     "React to a comment; repeating your current vote withdraws it",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{gateway.VoteLike, gateway.VoteDislike, gateway.VoteNone},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		switch args[1] {
		case gateway.VoteLike, gateway.VoteDislike, gateway.VoteNone:
		default:
			return fmt.Errorf("vote must be like, dislike or none")
		}

		profile, err := signedIn(ctx)
		if err != nil {
			return err
		}

		comments, err := current.api.Comments(ctx, voteBook)
		if err != nil {
			return err
		}
		updated, err := castVote(ctx, current.api, profile.ID, comments, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Your vote: %s · now +%d/-%d\n", thread.VoteOf(updated, profile.ID),
			thread.Count(updated, gateway.VoteLike), thread.Count(updated, gateway.VoteDislike))
		return nil
	},
}

// castVote seeds the reader's current vote from the fetched thread before
// casting, so repeating it withdraws the vote. It returns the comment with
// the settled vote applied.
func castVote(ctx context.Context, api optimistic.VoteAPI, userID string, comments []gateway.Comment, commentID, vote string) (gateway.Comment, error) {
	index := slices.IndexFunc(comments, func(comment gateway.Comment) bool { return comment.ID == commentID })
	if index < 0 {
		return gateway.Comment{}, fmt.Errorf("comment %s is not in this book", commentID)
	}

	votes := optimistic.NewVotes(api, userID, optimistic.Options[string]{})
	votes.Load(comments[index])
	state, err := votes.Cast(ctx, commentID, vote)
	if err != nil {
		return gateway.Comment{}, err
	}
	return thread.ApplyVote(comments, commentID, userID, state)[index], nil
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete-comment <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}
		if err := current.api.DeleteComment(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	bookmarkCmd.Flags().BoolVar(&bookmarkOn, "on", false, "Save regardless of the current state")
	bookmarkCmd.Flags().BoolVar(&bookmarkOff, "off", false, "Remove regardless of the current state")
	bookmarkCmd.MarkFlagsMutuallyExclusive("on", "off")

	commentsCmd.Flags().IntVar(&commentsPages, "pages", 1, "How many pages of threads to show")
	commentsCmd.Flags().BoolVar(&commentsExpand, "expand", false, "Show every reply")
	commentCmd.Flags().StringVar(&commentReplyTo, "reply-to", "", "Comment id to reply to")
	voteCmd.Flags().StringVar(&voteBook, "book", "", "Book id of the comment")
	_ = voteCmd.MarkFlagRequired("book")

	rootCmd.AddCommand(bookmarkCmd, rateCmd, commentsCmd, commentCmd, voteCmd, deleteCommentCmd)
}
