// Package cli implements the interactive QuickFlip terminal client.
//
// The REPL reads one command per line. Signed out, only login, help and
// exit are offered. Signed in:
//
//	load                         re-fetch items from the backend
//	scan <path>...               photograph items (placeholders appear at once)
//	list [scanned|purchased|sold]
//	buy <id> <price>             mark a scanned item as purchased
//	sell <id> <price>            mark a purchased item as sold
//	edit <id> field=value...     fields: title, description, condition,
//	                             estimate, paid, sold
//	delete <id>
//	stats                        realised profit and potential resale
//	chart                        monthly revenue for the last six months
//	logout
//
// Item ids may be abbreviated to any unique prefix.
package cli
