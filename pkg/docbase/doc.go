// Package docbase is a client for the DocBase REST API.
//
// # Overview
//
// A Client is bound to one team and authenticates every request with the
// team's API token. It creates, reads, updates, deletes, searches and
// comments on posts, lists groups, tags and teams, and uploads attachments.
// Every operation is a single HTTP call; there is no retry and no caching.
//
//	client, err := docbase.NewClient(docbase.DefaultConfig(token, "kray"),
//	    docbase.WithLogger(hclog.Default()))
//	if err != nil {
//	    return err
//	}
//
//	post, err := client.CreatePost(ctx, "Weekly report", "## Done\n...",
//	    docbase.WithScope(docbase.ScopeGroup),
//	    docbase.WithGroups(docbase.Group{ID: "12"}),
//	    docbase.WithTags("report", "weekly"))
//
// # Posts
//
// A Post's scope, groups and tags are only changed through SetScope,
// SetGroups and SetTags. Groups exist only while the scope is ScopeGroup:
// reading or writing them in another scope returns ErrGroupScope, and
// moving a post out of ScopeGroup clears them.
//
// # Pagination
//
// SearchPosts returns a PostSearchResult holding one page. Next and
// Previous follow the page links returned by the API, and EachPost walks
// every page.
//
// # Errors
//
// Responses with a non-2xx status are returned as *HTTPError. Local
// failures use ErrInvalidScope, ErrGroupScope, ErrInvalidURL,
// ErrNotPersisted and *FileError.
package docbase
