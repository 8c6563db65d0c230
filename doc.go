// Package retained implements a retained-mode render tree on top of the gg
// canvas API: layout with cached constraints, recorded painting into a
// persistent layer tree, and hit testing against committed geometry.
//
// Applications build a tree of nodes through a [Tree], give each node a
// [Box] or [Sliver] behavior, and drive frames through an [Owner]:
//
//	owner := retained.NewOwner()
//	tree := owner.Tree()
//	root := tree.NewBox(myRootBehavior)
//	tree.SetRoot(root, geom.Tight(geom.Sz(800, 600)))
//	owner.FlushFrame()
//	layers := owner.RootLayer()
//
// Between frames, mutate the tree and mark what changed; the next
// FlushFrame re-lays-out, re-records and re-composites only the invalidated
// boundaries. The resulting layer tree can be rasterized with the
// compositor package or handed to any consumer of gg recordings.
//
// An Owner and its tree are single-threaded apart from dirty registration;
// see the Owner documentation for the exact rules.
package retained
