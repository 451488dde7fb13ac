package linker

// runtime is the bundle prelude. It provides the shared module registry
// every emitted module is linked through: factories register under their
// module id, require instantiates on first use, and the module object is
// cached before its factory runs so circular imports observe a partial
// exports object instead of recursing forever.
const runtime = `var __modules__ = {};
var __cache__ = {};

function __register__(id, factory) {
  __modules__[id] = factory;
}

function __require__(id) {
  if (__cache__[id]) {
    return __cache__[id].exports;
  }
  if (!__modules__[id]) {
    throw new Error('module not found: ' + id);
  }
  var module = { id: id, exports: {} };
  __cache__[id] = module;
  __modules__[id](module, module.exports, __require__);
  return module.exports;
}

function __interop__(exports) {
  return exports && exports.__esModule ? exports['default'] : exports;
}
`
