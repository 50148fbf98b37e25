/*
Package postgres manages our database connection. As part of boot, MigrateUp
ensures all migrations have been run on the proper database. The situation
where the database is simply a target for some testing has been considered as
well; in that scenario, we drop the public schema on connect.

The [DB] wrapper exposes the chainable query surface the app needs and
translates driver errors into the messleave sentinel errors, so calling code
branches with errors.Is rather than matching SQLSTATEs. [UserStore] is the
concrete adapter behind the auth package's persistence port.
*/
package postgres
