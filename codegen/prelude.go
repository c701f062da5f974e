package codegen

// PreludeName is the global object holding the runtime helpers that generated
// code calls.
const PreludeName = "__bgtl"

// Prelude defines the runtime helpers. It must be evaluated once in a JS
// environment before any generated template function is called.
//
// A rendering failure is a plain record, {__bgtlFailure: true, reason, line,
// column, message}, so that it can cross the JS boundary intact; fail never
// re-attributes a record that already is one.
const Prelude = `var __bgtl = {
  entities: {'&': '&amp;', '<': '&lt;', '>': '&gt;', '"': '&quot;', "'": '&#39;'},

  escapeHtml: function (value) {
    return String(value).replace(/[&<>"']/g, function (ch) {
      return __bgtl.entities[ch];
    });
  },

  str: function (value) {
    return String(value);
  },

  each: function (self, list, body, values) {
    var i;
    if (list === null || list === undefined) {
      return;
    }
    if (typeof list !== 'function' && typeof list.length === 'number') {
      for (i = 0; i < list.length; i++) {
        body.call(self, values ? list[i] : i);
      }
      return;
    }
    for (i in list) {
      if (Object.prototype.hasOwnProperty.call(list, i)) {
        body.call(self, values ? list[i] : i);
      }
    }
  },

  guard: function (self, fn, reason, line, column) {
    try {
      return fn.call(self);
    } catch (e) {
      throw __bgtl.fail(e, reason, line, column);
    }
  },

  fail: function (e, reason, line, column) {
    if (e && e.__bgtlFailure === true) {
      return e;
    }
    return {__bgtlFailure: true, reason: reason, line: line, column: column, message: String(e)};
  }
};
`
