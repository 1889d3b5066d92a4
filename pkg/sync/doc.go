/*
The sync package implements lessonsync's reconciliation algorithm. It decides
which chapters and lessons must be created or updated on the remote course so
that it matches the lesson files on the user's machine.

There are two sides to the comparison:
1) The LocalSnapshot -- the validated lesson files, grouped into chapters by
   the name of the folder they live in.
2) The course snapshot -- the cached copy of the remote course, its chapters,
   and their lessons. See the `pkg/snapshot` package.

Chapters are matched by title, and lessons by slug. Lesson slugs share a single
namespace across the whole course, so a lesson can match a remote lesson that
lives in a different chapter. When the remote course contains duplicate titles
or slugs, the first one wins.

The comparison only looks at whether a match exists. It never compares the
contents of lessons, so every lesson that exists remotely is reported as an
update.
*/
package sync
