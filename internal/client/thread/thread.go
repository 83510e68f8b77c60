// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package thread turns the flat comment list of a book into one-level threads.

The server returns every comment of a book in a single response. Threads are
top-level comments, newest first, each with its direct replies oldest first.
Nesting is one level deep: a reply to a reply is attached to the thread root
and its text is prefixed with "@username " of the author it answered. A reply
whose parent is missing from the set is shown as a top-level comment.
*/
package thread

import (
	"sort"
	"strings"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/pkg/slice"
)

// Thread is a top-level comment with its replies.
type Thread struct {
	Root    gateway.Comment
	Replies []gateway.Comment
}

// Assemble groups comments into threads. The input is not modified.
func Assemble(comments []gateway.Comment) []Thread {
	byID := make(map[string]gateway.Comment, len(comments))
	for _, comment := range comments {
		byID[comment.ID] = comment
	}

	var roots []gateway.Comment
	replies := make(map[string][]gateway.Comment)

	for _, comment := range comments {
		if comment.ParentID == nil {
			roots = append(roots, comment)
			continue
		}

		parent, ok := byID[*comment.ParentID]
		if !ok {
			comment.ParentID = nil
			roots = append(roots, comment)
			continue
		}

		root := rootOf(parent, byID)
		if root.ID != parent.ID {
			comment.Text = mention(parent.Author.Username, comment.Text)
			rootID := root.ID
			comment.ParentID = &rootID
		}
		replies[root.ID] = append(replies[root.ID], comment)
	}

	sort.SliceStable(roots, func(i, j int) bool { return roots[i].CreatedAt.After(roots[j].CreatedAt) })

	threads := make([]Thread, 0, len(roots))
	for _, root := range roots {
		children := replies[root.ID]
		sort.SliceStable(children, func(i, j int) bool { return children[i].CreatedAt.Before(children[j].CreatedAt) })
		if children == nil {
			children = []gateway.Comment{}
		}
		threads = append(threads, Thread{Root: root, Replies: children})
	}
	return threads
}

// rootOf walks up from comment to the top of its chain. A broken chain stops
// at the last comment reached, which is itself shown as top-level.
func rootOf(comment gateway.Comment, byID map[string]gateway.Comment) gateway.Comment {
	seen := map[string]bool{comment.ID: true}
	for comment.ParentID != nil {
		parent, ok := byID[*comment.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		comment = parent
	}
	return comment
}

func mention(username, text string) string {
	if username == "" {
		return text
	}
	prefix := "@" + username + " "
	if strings.HasPrefix(text, prefix) {
		return text
	}
	return prefix + text
}

// # Votes

// Likes counts like votes on the root comment.
func (thread Thread) Likes() int { return count(thread.Root.Votes, gateway.VoteLike) }

// Dislikes counts dislike votes on the root comment.
func (thread Thread) Dislikes() int { return count(thread.Root.Votes, gateway.VoteDislike) }

// MyVote returns userID's vote on the root comment.
func (thread Thread) MyVote(userID string) string { return VoteOf(thread.Root, userID) }

// Count returns how many votes of kind a comment carries.
func Count(comment gateway.Comment, kind string) int { return count(comment.Votes, kind) }

// VoteOf returns userID's vote on comment, or none.
func VoteOf(comment gateway.Comment, userID string) string {
	for _, vote := range comment.Votes {
		if vote.UserID == userID {
			return vote.Vote
		}
	}
	return gateway.VoteNone
}

func count(votes []gateway.Vote, kind string) int {
	total := 0
	for _, vote := range votes {
		if vote.Vote == kind {
			total++
		}
	}
	return total
}

/*
ApplyVote returns a copy of comments where userID's vote on commentID is
replaced by vote. Casting none removes it. Other comments share their vote
slices with the input.
*/
func ApplyVote(comments []gateway.Comment, commentID, userID, vote string) []gateway.Comment {
	out := make([]gateway.Comment, len(comments))
	copy(out, comments)

	for i := range out {
		if out[i].ID != commentID {
			continue
		}
		votes := slice.Filter(out[i].Votes, func(existing gateway.Vote) bool { return existing.UserID != userID })
		if vote != gateway.VoteNone {
			votes = append(votes, gateway.Vote{UserID: userID, Vote: vote})
		}
		out[i].Votes = votes
	}
	return out
}
