// Package session maneja las credenciales que el navegador guarda en cookies.
//
// El estado de sesión vive en el cliente: tres cookies HttpOnly que siempre se
// escriben o se borran juntas.
//
//	dl_token       access token, max-age = expires_in
//	dl_expires_at  expiración en epoch ms, max-age = expires_in
//	dl_rtoken      refresh token cifrado (AES-256-GCM), max-age = 7 días
//
// Los services devuelven un Credentials; Writer lo traduce a Set-Cookie y
// Accessor lo lee de vuelta. Ninguno de los dos muta el request.
package session
