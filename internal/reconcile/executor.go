package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/shortsync/shortsync/internal/shortio"
)

// Execute applies a diff in three phases: creates, then updates, then
// deletes. Items are handled independently; a failure is recorded in
// the result and never aborts the remaining items. In dry-run mode only
// intent is logged and counted, with no remote calls.
func (s *Syncer) Execute(ctx context.Context, diff Diff, dryRun bool) Result {
	var res Result
	for _, want := range diff.Create {
		s.executeCreate(ctx, &res, want, dryRun)
	}
	for _, pair := range diff.Update {
		s.executeUpdate(ctx, &res, pair, dryRun)
	}
	for _, got := range diff.Delete {
		s.executeDelete(ctx, &res, got, dryRun)
	}
	return res
}

func (s *Syncer) executeCreate(ctx context.Context, res *Result, want DesiredLink, dryRun bool) {
	key := want.Key()
	if dryRun {
		log.Info().Str("link", key).Str("url", want.OriginalURL).Msg("Would create link")
		res.Created++
		return
	}

	spec := linkSpecFor(want, withManagedTag(want.Tags, s.managedTag))
	if _, err := s.client.CreateLink(ctx, spec); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to create %s: %v", key, err))
		log.Error().Err(err).Str("link", key).Msg("Create failed")
		return
	}
	res.Created++
	log.Info().Str("link", key).Str("url", want.OriginalURL).Msg("Link created")
}

func (s *Syncer) executeUpdate(ctx context.Context, res *Result, pair UpdatePair, dryRun bool) {
	key := pair.Desired.Key()
	if dryRun {
		for _, ch := range linkChanges(pair.Desired, pair.Observed, s.managedTag) {
			log.Info().
				Str("link", key).
				Str("field", ch.Field).
				Str("from", ch.From).
				Str("to", ch.To).
				Msg("Would update link")
		}
		res.Updated++
		return
	}

	// Updating also claims the link: the managed tag is merged in, so a
	// manually created link matched by key becomes managed from now on.
	spec := linkSpecFor(pair.Desired, withManagedTag(pair.Desired.Tags, s.managedTag))
	spec.Domain = ""
	if _, err := s.client.UpdateLink(ctx, pair.Observed.ID, spec); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to update %s: %v", key, err))
		log.Error().Err(err).Str("link", key).Msg("Update failed")
		return
	}
	res.Updated++
	log.Info().Str("link", key).Msg("Link updated")
}

func (s *Syncer) executeDelete(ctx context.Context, res *Result, got ObservedLink, dryRun bool) {
	key := got.Key()
	if dryRun {
		log.Info().Str("link", key).Str("url", got.OriginalURL).Msg("Would delete link")
		res.Deleted++
		return
	}

	if err := s.client.DeleteLink(ctx, got.ID); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to delete %s: %v", key, err))
		log.Error().Err(err).Str("link", key).Msg("Delete failed")
		return
	}
	res.Deleted++
	log.Info().Str("link", key).Msg("Link deleted")
}

// withManagedTag returns tags with the management tag appended, without
// duplicating it when already present.
func withManagedTag(tags []string, managedTag string) []string {
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	if !hasTag(out, managedTag) {
		out = append(out, managedTag)
	}
	return out
}

// linkSpecFor builds the API payload for a desired link with the given
// final tag set.
func linkSpecFor(d DesiredLink, tags []string) shortio.LinkSpec {
	spec := shortio.LinkSpec{
		Domain:      d.Domain,
		Path:        d.Path,
		OriginalURL: d.OriginalURL,
		Title:       d.Title,
		Tags:        tags,
	}
	for key, val := range d.Extras {
		switch key {
		case ExtraIPhoneURL:
			spec.IPhoneURL = val
		case ExtraAndroidURL:
			spec.AndroidURL = val
		case ExtraExpiredURL:
			spec.ExpiredURL = val
		case ExtraUTMSource:
			spec.UTMSource = val
		case ExtraUTMMedium:
			spec.UTMMedium = val
		case ExtraUTMCampaign:
			spec.UTMCampaign = val
		}
	}
	return spec
}
