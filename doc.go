// Package perdomain keeps one settings store per web origin behind a single
// form-binding API.
//
// Origins declared at install time share the default store, persisted under
// the base storage name ("options" unless configured). Every origin granted
// later gets its own store, persisted under "<base>-<domain>", where domain is
// the host of the origin without a leading wildcard:
//
//	https://app.com            -> options              (static origin)
//	https://*.foo.example/*    -> options-foo.example  (granted origin)
//
// A Manager resolves and memoizes those stores, deletes the data of origins
// whose permission is revoked, and binds a form to one store at a time. When
// more than one origin is available the form gets a domain picker; picking a
// domain unbinds the previous store before binding the next one.
//
// Collaborators are interfaces: Permissions reports static and granted
// origins, ExecutionContext tells privileged (background) code apart from
// injected code, and StoreFactory builds SettingsStore values. The default
// factory uses pkg/settings over a pkg/storage Area.
package perdomain
