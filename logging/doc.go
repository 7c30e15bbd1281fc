/*
Package logging implements the application log setup of kvprobe.

The application log uses the logrus package:

https://github.com/sirupsen/logrus

Components that accept a Logger, like the store clients in the net
package, can be given any implementation of the Logger interface. When
none is given, DefaultLog is used, which writes through the standard
logrus logger and therefore honors everything configured with Init.

During startup initialization, it is possible to redirect the log output
from the default /dev/stderr to another writer, to switch to JSON
output, to set the minimum level and to set a common prefix for each
log entry.
*/
package logging
